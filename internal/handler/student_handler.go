package handler

import (
	"campushire/internal/service"
	"campushire/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StudentHandler is the admin-facing roster API.
type StudentHandler struct {
	students *service.Students
}

func NewStudentHandler(students *service.Students) *StudentHandler {
	return &StudentHandler{students: students}
}

func (h *StudentHandler) List(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	students, pagination, err := h.students.List(c.Request().Context(), p, c.QueryParam("search"), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"students": students, "pagination": pagination})
}

func (h *StudentHandler) Get(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.students.Get(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"student": student})
}

// Assign pulls a student into the calling admin's college.
func (h *StudentHandler) Assign(c echo.Context) error {
	log := logger.FromEcho(c)

	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.students.Assign(c.Request().Context(), p, id)
	if err != nil {
		log.Warn("Student assignment failed", zap.Uint("student_id", id), zap.Error(err))
		return respondError(c, err)
	}
	return ok(c, echo.Map{"student": student})
}
