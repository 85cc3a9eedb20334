package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors that escape a handler into JSON
// error bodies so no route ever leaks a bare 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}

// ErrorHandler is the app-level fallback for errors that escape a handler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if appErr, ok := AsAppError(err); ok {
		return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Code, appErr.Message))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}
