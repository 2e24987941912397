package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/alert"
	"github.com/edumanage/edurisk/core/student"
)

var errAlertDeliveryFailed = echo.NewHTTPError(http.StatusBadGateway, "alert delivery failed")

type alertApi struct {
	svc        *alert.Service
	studentSvc *student.Service
	validate   *validator.Validate
}

func registerAlertAPI(g *echo.Group, svc *alert.Service, studentSvc *student.Service, validate *validator.Validate) {
	api := alertApi{
		svc:        svc,
		studentSvc: studentSvc,
		validate:   validate,
	}

	ag := g.Group("/alerts")
	ag.POST("/notify", api.notify)
	ag.GET("/student/:prn", api.queryByPRN)
	ag.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *alertApi) notify(ctx echo.Context) error {
	var data NotifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NotifyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.GetByPRN(data.StudentPRN)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by PRN")
	}

	if out := api.svc.Notify(ctx.Request().Context(), s, data.Message); !out.OK() {
		return errAlertDeliveryFailed
	}
	return ctx.JSON(http.StatusOK, NotifyResponse{StudentPRN: s.PRN, Sent: true})
}

func (api *alertApi) queryByPRN(ctx echo.Context) error {
	alerts, err := api.svc.QueryByPRN(ctx.Param("prn"))
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *alertApi) markRead(ctx echo.Context) error {
	if err := api.svc.MarkRead(ctx.Param("id")); err != nil {
		if errors.Cause(err) == alert.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking alert read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	NotifyRequest struct {
		StudentPRN string `json:"student_prn" validate:"required,prn"`
		Message    string `json:"message" validate:"required"`
	}

	NotifyResponse struct {
		StudentPRN string `json:"student_prn"`
		Sent       bool   `json:"sent"`
	}
)

func (nr *NotifyRequest) Validate(validate *validator.Validate) error {
	nr.StudentPRN = core.CleanString(nr.StudentPRN, true /* upper */)
	nr.Message = core.CleanString(nr.Message)
	return validate.Struct(nr)
}
