package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/services"
)

type ScheduleHandler struct {
	schedules    *services.ScheduleService
	applications *services.ApplicationService
}

func NewScheduleHandler(schedules *services.ScheduleService, applications *services.ApplicationService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, applications: applications}
}

func currentUserID(c *fiber.Ctx) *uuid.UUID {
	if user, ok := middleware.Principal(c); ok {
		id := user.ID
		return &id
	}
	return nil
}

func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	schedules, err := h.schedules.List(currentUserID(c))
	if err != nil {
		return serverError(c)
	}
	return c.JSON(schedules)
}

func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	schedule, err := h.schedules.Get(id, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(schedule)
}

func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.ScheduleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	schedule, err := h.schedules.Create(user.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingScheduleFields),
			errors.Is(err, services.ErrBadScheduleDate):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	var req dto.ScheduleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	schedule, err := h.schedules.Update(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScheduleNotFound):
			return notFound(c, err.Error())
		case errors.Is(err, services.ErrBadScheduleDate):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}
	return c.JSON(schedule)
}

func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	if err := h.schedules.Delete(id); err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "Schedule deleted"})
}

func (h *ScheduleHandler) Applicants(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	applicants, err := h.schedules.Applicants(id)
	if err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(applicants)
}

func (h *ScheduleHandler) Apply(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	application, err := h.applications.Apply(user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScheduleNotFound):
			return notFound(c, err.Error())
		case errors.Is(err, services.ErrAlreadyApplied):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(application)
}

func (h *ScheduleHandler) CancelApplication(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid schedule id")
	}

	if err := h.applications.Cancel(user.ID, id); err != nil {
		if errors.Is(err, services.ErrApplicationMissing) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "Application cancelled"})
}

func (h *ScheduleHandler) MyApplications(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	applications, err := h.applications.Mine(user.ID)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(applications)
}
