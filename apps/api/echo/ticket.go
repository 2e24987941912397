package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/ticket"
)

type ticketApi struct {
	svc      *ticket.Service
	validate *validator.Validate
}

func registerTicketAPI(g *echo.Group, svc *ticket.Service, validate *validator.Validate) {
	api := ticketApi{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/tickets")
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id/status", api.setStatus)
	tg.PUT("/:id/reply", api.reply)
}

// Handlers

func (api *ticketApi) create(ctx echo.Context) error {
	var data ticket.NewTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTicket")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Submit(data)
	if err != nil {
		return errors.Wrap(err, "submitting ticket")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *ticketApi) query(ctx echo.Context) error {
	filter := new(ticket.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []ticket.Ticket{})
	}

	tickets, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying tickets")
	}
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}
	return ctx.JSON(http.StatusOK, tickets)
}

func (api *ticketApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == ticket.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding ticket by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *ticketApi) setStatus(ctx echo.Context) error {
	var data StatusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.SetStatus(ctx.Param("id"), ticket.Status(data.Status))
	if err != nil {
		switch errors.Cause(err) {
		case ticket.ErrNotFound:
			return errHttpNotFound
		case ticket.ErrUnknownStatus:
			return core.NewValidationError(nil, core.FieldError{Field: "status", Error: err.Error()})
		}
		return errors.Wrap(err, "updating ticket status")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *ticketApi) reply(ctx echo.Context) error {
	var data ReplyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReplyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.AttachReply(ctx.Param("id"), data.Text, data.Author)
	if err != nil {
		if errors.Cause(err) == ticket.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "attaching reply")
	}
	return ctx.JSON(http.StatusOK, t)
}

type (
	StatusUpdateRequest struct {
		Status string `json:"status" validate:"required"`
	}

	ReplyRequest struct {
		Text   string `json:"text" validate:"required"`
		Author string `json:"author" validate:"required,max=255"`
	}
)

func (sr *StatusUpdateRequest) Validate(validate *validator.Validate) error {
	sr.Status = core.CleanString(sr.Status)
	return validate.Struct(sr)
}

func (rr *ReplyRequest) Validate(validate *validator.Validate) error {
	rr.Text = core.CleanString(rr.Text)
	rr.Author = core.CleanString(rr.Author)
	return validate.Struct(rr)
}
