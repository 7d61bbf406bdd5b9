package handler

import (
	"campushire/internal/service"

	"github.com/labstack/echo/v4"
)

// CollegeHandler serves the public directory and college management.
type CollegeHandler struct {
	colleges *service.Colleges
}

func NewCollegeHandler(colleges *service.Colleges) *CollegeHandler {
	return &CollegeHandler{colleges: colleges}
}

// ListActive is public; the registration form uses it.
func (h *CollegeHandler) ListActive(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	colleges, pagination, err := h.colleges.ListActive(c.Request().Context(), c.QueryParam("search"), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"colleges": colleges, "pagination": pagination})
}

// ListAll returns colleges in every status, for the platform operator.
func (h *CollegeHandler) ListAll(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	colleges, err := h.colleges.ListAll(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"colleges": colleges})
}

func (h *CollegeHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	college, err := h.colleges.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"college": college})
}

func (h *CollegeHandler) Update(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Location           *string `json:"location"`
		Website            *string `json:"website" validate:"omitempty"`
		Address            *string `json:"address"`
		AllowedEmailDomain *string `json:"allowed_email_domain"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	college, err := h.colleges.Update(c.Request().Context(), p, id, service.UpdateCollegeInput{
		Location:           req.Location,
		Website:            req.Website,
		Address:            req.Address,
		AllowedEmailDomain: req.AllowedEmailDomain,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"college": college})
}
