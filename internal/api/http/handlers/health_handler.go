package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GatewayStatus reports the chat gateway connection.
type GatewayStatus interface {
	Connected() bool
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	gateway     GatewayStatus
	snapshot    Pinger
}

// NewHealthHandler returns a new handler instance. Nil dependencies are
// reported as not configured and do not fail readiness.
func NewHealthHandler(serviceName, version string, gateway GatewayStatus, snapshot Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, gateway: gateway, snapshot: snapshot}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	switch {
	case h.gateway == nil:
		depStatus["gateway"] = "not configured"
	case h.gateway.Connected():
		depStatus["gateway"] = "ok"
	default:
		depStatus["gateway"] = "disconnected"
		ready = false
	}

	if h.snapshot == nil {
		depStatus["snapshot"] = "not configured"
	} else if err := h.snapshot.Ping(ctx); err != nil {
		depStatus["snapshot"] = err.Error()
		ready = false
	} else {
		depStatus["snapshot"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
