package v1

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"raporbot/internal/config"
)

// RequireAPIKey checks the Authorization bearer token against the
// configured bcrypt hash. Without a configured hash the endpoint is
// open in development and disabled in production.
func RequireAPIKey(cfg *config.Config, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.APIKeyHash == "" {
			if cfg.IsProduction() {
				return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "API key is not configured",
				})
			}
			return c.Next()
		}

		header := c.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(token)); err != nil {
			log.WithField("ip", c.IP()).Warn("rejected API request with bad key")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}
		return c.Next()
	}
}
