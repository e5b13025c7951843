// Package web provides the HTTP handlers and REST API endpoints of the form reporting service.
package web

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var errInvalidJSON = errors.New("invalid JSON format")

type APIHandlers struct {
	services  *services.Services
	validator *validator.Validate
}

func NewAPIHandlers(svc *services.Services, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		services:  svc,
		validator: validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.services.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "unhealthy", Message: message})
	}

	return c.JSON(HealthResponse{Status: "healthy", Message: message})
}

// decode binds the JSON body into out and validates it.
func (h *APIHandlers) decode(c fiber.Ctx, out any) error {
	err := c.Bind().JSON(out)
	if err != nil {
		return errInvalidJSON
	}

	return h.validator.Struct(out)
}

func queryInt(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}

	return value, nil
}

func queryBool(c fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New(key + " must be a boolean")
	}

	return &value, nil
}

// queryTime accepts a date (2006-01-02) or an RFC 3339 timestamp.
func queryTime(c fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		value, err := time.Parse(layout, raw)
		if err == nil {
			return &value, nil
		}
	}

	return nil, errors.New(key + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}
