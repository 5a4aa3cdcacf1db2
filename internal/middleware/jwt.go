package middleware

import (
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token and leaves the parsed token in the
// echo context for ActorMiddleware to consume.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
	})
}

// ActorMiddleware turns validated token claims into a models.Actor and stores
// it on the request context. Handlers and services never read claims directly;
// the actor is the only identity they see.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, _ := claims["sub"].(string)
			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			actor := &models.Actor{ID: userID}
			actor.Name, _ = claims["name"].(string)
			actor.Role, _ = claims["role"].(string)
			if raw, ok := claims["location_id"].(string); ok {
				if locationID, err := uuid.Parse(raw); err == nil {
					actor.LocationID = &locationID
				}
			}

			ctx := common.WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
