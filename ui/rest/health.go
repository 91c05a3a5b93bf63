package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moveline/leadgate/domains/health"
	"github.com/moveline/leadgate/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

// InitRestHealth registers the probes. They stay unauthenticated so load
// balancers can reach them.
func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}

	app.Get("/healthz", handler.Live)
	app.Get("/health", handler.Check)

	return handler
}

func (h *Health) Live(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Alive",
		Results: h.Service.Live(c.UserContext()),
	})
}

func (h *Health) Check(c *fiber.Ctx) error {
	report := h.Service.Check(c.UserContext())

	status := 200
	if report.Status == health.StatusError {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    string(report.Status),
		Message: "Health report",
		Results: report,
	})
}
