package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core/alert"
	"github.com/edumanage/edurisk/core/student"
)

type studentApi struct {
	svc      *student.Service
	alertSvc *alert.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, svc *student.Service, alertSvc *alert.Service, validate *validator.Validate) {
	api := studentApi{
		svc:      svc,
		alertSvc: alertSvc,
		validate: validate,
	}

	sg := g.Group("/students")
	sg.POST("/upload", api.upload)
	sg.GET("", api.query)
	sg.GET("/high-risk", api.highRisk)
	sg.GET("/dashboard", api.dashboard)
	sg.GET("/uploads", api.uploads)
	sg.GET("/:prn", api.retrieve)
	sg.DELETE("/:prn", api.destroy)
}

// Handlers

type UploadResponse struct {
	student.UploadResult
	AlertsSent int `json:"alerts_sent"`
}

func (api *studentApi) upload(ctx echo.Context) error {
	var data student.UploadBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UploadBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.ReceivedAt.IsZero() {
		data.ReceivedAt = time.Now().UTC()
	}

	res, err := api.svc.ProcessUpload(data)
	if err != nil {
		return errors.Wrap(err, "processing upload")
	}

	// the batch is applied; alert-worthy students get their SMS now
	var sent int
	if len(res.Alerts) > 0 {
		toAlert := make([]student.Student, 0, len(res.Alerts))
		for _, prn := range res.Alerts {
			s, err := api.svc.GetByPRN(prn)
			if err != nil {
				continue
			}
			toAlert = append(toAlert, s)
		}
		for _, out := range api.alertSvc.Dispatch(ctx.Request().Context(), toAlert) {
			if out.OK() {
				sent++
			}
		}
	}

	return ctx.JSON(http.StatusOK, UploadResponse{UploadResult: res, AlertsSent: sent})
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}

	students, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) highRisk(ctx echo.Context) error {
	students, err := api.svc.HighRisk(ctx.QueryParam("division"))
	if err != nil {
		return errors.Wrap(err, "querying high-risk students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	stats, err := api.svc.Dashboard(ctx.QueryParam("division"))
	if err != nil {
		return errors.Wrap(err, "aggregating dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *studentApi) uploads(ctx echo.Context) error {
	entries, err := api.svc.Uploads(ctx.QueryParam("division"))
	if err != nil {
		return errors.Wrap(err, "querying upload log")
	}
	if entries == nil {
		entries = []student.UploadLog{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByPRN(ctx.Param("prn"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by PRN")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByPRN(ctx.Param("prn")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by PRN")
	}
	if err := api.svc.Delete(ctx.Param("prn")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
