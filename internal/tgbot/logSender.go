package tgbot

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/utils"
)

// LogSender stands in for the bot when no telegram token is configured.
type LogSender struct{}

func (LogSender) SendPhotos(ctx context.Context, paths []string, caption string) error {
	slog.Info("telegram disabled, photos not sent", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.Any("paths", paths), slog.String("caption", caption))
	return nil
}

func (LogSender) SendDocument(ctx context.Context, filename string, data []byte, caption string) error {
	slog.Info("telegram disabled, document not sent", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("filename", filename), slog.Int("size", len(data)))
	return nil
}

func (LogSender) SendText(ctx context.Context, text string) error {
	slog.Warn("telegram disabled, alert not sent", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("text", text))
	return nil
}
