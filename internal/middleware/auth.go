package middleware

import (
	"strings"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/http/dto"
	"github.com/book-catalog/backend/internal/metrics"
	"github.com/book-catalog/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware rejects requests without a verifiable bearer token before any resolver runs.
func AuthMiddleware(verifier auth.Verifier, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthenticated(c, "missing authorization header")
		}

		tokenStr, ok := bearerToken(authHeader)
		if !ok {
			return unauthenticated(c, "invalid authorization format")
		}

		actor, err := verifier.Verify(c.UserContext(), tokenStr)
		if err != nil {
			log.Debug("token verification failed", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			return unauthenticated(c, "invalid or expired token")
		}
		metrics.AuthenticationAttemptsTotal.WithLabelValues("success").Inc()

		c.SetUserContext(auth.WithActor(c.UserContext(), actor))

		return c.Next()
	}
}

// GetActor returns the identity AuthMiddleware attached to the request, if any.
func GetActor(c *fiber.Ctx) (models.Actor, bool) {
	return auth.ActorFrom(c.UserContext())
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
	return c.Status(fiber.StatusUnauthorized).JSON(dto.GraphQLResponse{
		Errors: []dto.GraphQLError{{
			Message: msg,
			Extensions: map[string]any{
				"code":       "UNAUTHENTICATED",
				"request_id": GetRequestID(c),
			},
		}},
	})
}
