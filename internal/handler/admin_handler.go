package handler

import (
	"campushire/internal/service"
	"campushire/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler covers initial setup and super-admin management of the admin
// roster.
type AdminHandler struct {
	admins *service.Admins
	setup  *service.Setup
}

func NewAdminHandler(admins *service.Admins, setup *service.Setup) *AdminHandler {
	return &AdminHandler{admins: admins, setup: setup}
}

// Setup bootstraps an empty deployment; it fails once any college or admin
// exists.
func (h *AdminHandler) Setup(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.setup.InitialSetup(c.Request().Context(), service.SetupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("Initial setup rejected", zap.Error(err))
		return respondError(c, err)
	}

	return created(c, echo.Map{
		"message": "initial setup complete",
		"user":    user,
	})
}

func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	log := logger.FromEcho(c)

	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Name        string `json:"name" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		CollegeID   uint   `json:"college_id" validate:"required"`
		Description string `json:"description"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	admin, err := h.admins.CreateAdmin(c.Request().Context(), p, service.CreateAdminInput{
		Name:        req.Name,
		Email:       req.Email,
		CollegeID:   req.CollegeID,
		Description: req.Description,
	})
	if err != nil {
		log.Warn("Admin invitation failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	return created(c, echo.Map{
		"message": "admin invited, credentials sent by email",
		"admin":   admin,
	})
}

func (h *AdminHandler) ListAdmins(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	admins, err := h.admins.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"admins": admins})
}
