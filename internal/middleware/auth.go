package middleware

import (
	"context"

	"tango/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgInternalError = "Something went wrong. Please try again later."
	msgAskPassword   = "Hi! This bot is private. Send the password to continue:"
)

// AuthMiddleware lets only users who sent the bot password through
func AuthMiddleware(ctx context.Context, authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			authorized, err := authService.Admit(ctx, userID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			if !authorized {
				logger.Debug("Unauthorized user blocked", zap.Int64("user_id", userID))
				if c.Callback() != nil {
					if err := c.Respond(); err != nil {
						logger.Warn("Failed to acknowledge callback", zap.Error(err))
					}
				}
				return c.Send(msgAskPassword)
			}

			return next(c)
		}
	}
}
