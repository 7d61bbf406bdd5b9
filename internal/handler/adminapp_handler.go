package handler

import (
	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/service"
	"campushire/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminApplicationHandler exposes the apply/review flow.
type AdminApplicationHandler struct {
	apps *service.AdminApplications
}

func NewAdminApplicationHandler(apps *service.AdminApplications) *AdminApplicationHandler {
	return &AdminApplicationHandler{apps: apps}
}

// Apply is public: a prospective admin registers themselves and their
// college in one request.
func (h *AdminApplicationHandler) Apply(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name                    string `json:"name" validate:"required"`
		Email                   string `json:"email" validate:"required,email"`
		Password                string `json:"password" validate:"required,min=8"`
		Position                string `json:"position" validate:"required"`
		VerificationDocumentURL string `json:"verification_document_url" validate:"omitempty,url"`

		CollegeName        string `json:"college_name" validate:"required"`
		CollegeLocation    string `json:"college_location"`
		CollegeWebsite     string `json:"college_website" validate:"omitempty,url"`
		CollegeAddress     string `json:"college_address"`
		AllowedEmailDomain string `json:"allowed_email_domain"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	app, err := h.apps.Apply(c.Request().Context(), service.ApplyInput{
		Name:                    req.Name,
		Email:                   req.Email,
		Password:                req.Password,
		Position:                req.Position,
		VerificationDocumentURL: req.VerificationDocumentURL,
		CollegeName:             req.CollegeName,
		CollegeLocation:         req.CollegeLocation,
		CollegeWebsite:          req.CollegeWebsite,
		CollegeAddress:          req.CollegeAddress,
		AllowedEmailDomain:      req.AllowedEmailDomain,
	})
	if err != nil {
		log.Warn("Admin application failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	return created(c, echo.Map{
		"message":     "application submitted, please verify your email",
		"application": app,
	})
}

func (h *AdminApplicationHandler) List(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var status *model.ApplicationStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := model.ApplicationStatus(raw)
		if s != model.ApplicationPending && s != model.ApplicationApproved && s != model.ApplicationRejected {
			return respondError(c, apperr.Validation("invalid status filter"))
		}
		status = &s
	}

	apps, err := h.apps.List(c.Request().Context(), p, status)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"applications": apps})
}

func (h *AdminApplicationHandler) Get(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	app, err := h.apps.Get(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"application": app})
}

func (h *AdminApplicationHandler) Review(c echo.Context) error {
	log := logger.FromEcho(c)

	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
		Comments string `json:"comments"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	app, err := h.apps.Review(c.Request().Context(), p, id, model.ApplicationStatus(req.Decision), req.Comments)
	if err != nil {
		log.Warn("Application review failed", zap.Uint("application_id", id), zap.Error(err))
		return respondError(c, err)
	}
	return ok(c, echo.Map{"application": app})
}
