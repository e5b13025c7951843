package web

import (
	"errors"

	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// fieldErrors extends a validation problem with the errors of each field.
type fieldErrors struct {
	Errors        map[string][]string `json:"errors"`
	InvalidFields int                 `json:"invalid_fields"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusUnauthorized).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusForbidden).
		WithInstance(c.Path()).
		WithType("forbidden").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service and persistence errors to problem documents.
func handleServiceError(c fiber.Ctx, err error) error {
	var invalid *services.InvalidResponsesError

	switch {
	case errors.As(err, &invalid):
		problem := problems.Extend(
			problems.NewStatusProblem(fiber.StatusBadRequest).
				WithInstance(c.Path()).
				WithType("validation_error").
				WithDetail("Please correct the errors and try again."),
			fieldErrors{
				Errors:        invalid.Validation.Errors,
				InvalidFields: invalid.Validation.InvalidFields,
			},
		)

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	case services.IsForbiddenError(err):
		return forbidden(c, err.Error())

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(fiber.StatusConflict).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		return internalError(c, err)
	}
}
