package middleware

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			var chatID int64
			if c.Chat() != nil {
				chatID = c.Chat().ID
			}

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.Int64("chatID", chatID),
				slog.String("text", c.Text()),
			)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// AllowChats drops updates from chats not listed. Zero ids are ignored.
func AllowChats(ids ...int64) tele.MiddlewareFunc {
	allowed := slices.DeleteFunc(slices.Clone(ids), func(id int64) bool { return id == 0 })

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil || !slices.Contains(allowed, c.Chat().ID) {
				rqID, _ := c.Get("rqID").(string)
				slog.Warn("update from not allowed chat dropped", slog.String("rqID", rqID))
				return nil
			}
			return next(c)
		}
	}
}
