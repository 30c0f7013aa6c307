package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/observability"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				status := http.StatusInternalServerError
				var code, message string
				if fe, ok := err.(*fiber.Error); ok {
					status, code, message = fe.Code, http.StatusText(fe.Code), fe.Message
				} else {
					domainErr := apperrors.ToDomainError(err)
					status, code, message = httpStatus(domainErr.Code), domainErr.Code, domainErr.Message
				}
				if status >= http.StatusInternalServerError {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
				}
				_ = c.Status(status).JSON(fiber.Map{"error": fiber.Map{
					"code":    code,
					"message": message,
				}})
				err = nil
			}
		}()
		return c.Next()
	}
}

func httpStatus(code string) int {
	switch code {
	case apperrors.CodeUnauthorized:
		return http.StatusForbidden
	case apperrors.CodeNotFound, apperrors.CodeNotTicketChannel:
		return http.StatusNotFound
	case apperrors.CodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.CodeDuplicateTicket, apperrors.CodeTicketNotOpen, apperrors.CodeClosePending, apperrors.CodeQuotaExceeded:
		return http.StatusConflict
	case apperrors.CodeCollaboratorFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
