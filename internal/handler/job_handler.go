package handler

import (
	"time"

	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/service"
	"campushire/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobHandler exposes job postings and the student application flow.
type JobHandler struct {
	jobs *service.Jobs
}

func NewJobHandler(jobs *service.Jobs) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Title        string     `json:"title" validate:"required"`
		Description  string     `json:"description" validate:"required"`
		Requirements string     `json:"requirements"`
		Location     string     `json:"location"`
		ExpiresAt    *time.Time `json:"expires_at"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.Create(c.Request().Context(), p, service.CreateJobInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		log.Warn("Job creation failed", zap.Error(err))
		return respondError(c, err)
	}
	return created(c, echo.Map{"job": job})
}

func (h *JobHandler) List(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var status *model.JobStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := model.JobStatus(raw)
		if s != model.JobActive && s != model.JobClosed {
			return respondError(c, apperr.Validation("invalid status filter"))
		}
		status = &s
	}

	jobs, err := h.jobs.List(c.Request().Context(), p, status, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"jobs": jobs})
}

func (h *JobHandler) Get(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.Get(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"job": job})
}

func (h *JobHandler) Update(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Requirements *string    `json:"requirements"`
		Location     *string    `json:"location"`
		Status       *string    `json:"status"`
		ExpiresAt    *time.Time `json:"expires_at"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	in := service.UpdateJobInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		ExpiresAt:    req.ExpiresAt,
	}
	if req.Status != nil {
		s := model.JobStatus(*req.Status)
		in.Status = &s
	}

	job, err := h.jobs.Update(c.Request().Context(), p, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"job": job})
}

func (h *JobHandler) Delete(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.jobs.Delete(c.Request().Context(), p, id); err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"message": "job deleted"})
}

func (h *JobHandler) Apply(c echo.Context) error {
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
		ResumeURL string `json:"resume_url" validate:"omitempty,url"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	app, err := h.jobs.Apply(c.Request().Context(), p, id, req.ResumeURL)
	if err != nil {
		log.Warn("Job application failed", zap.Uint("job_id", id), zap.Error(err))
		return respondError(c, err)
	}
	return created(c, echo.Map{"application": app})
}

func (h *JobHandler) ListApplications(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	apps, err := h.jobs.ListApplications(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"applications": apps})
}

func (h *JobHandler) MyApplications(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	apps, err := h.jobs.MyApplications(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"applications": apps})
}

func (h *JobHandler) UpdateApplicationStatus(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	applicationID, err := paramID(c, "applicationId")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=APPLIED UNDER_REVIEW ACCEPTED REJECTED"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	app, err := h.jobs.UpdateApplicationStatus(c.Request().Context(), p, jobID, applicationID, model.JobApplicationStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"application": app})
}
