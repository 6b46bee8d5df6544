package tgbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/netbuy_report_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

var ErrNoChat = errors.New("error telegram chat id is not configured")

// TGBot sends reports to the configured chat and serves the bot commands.
type TGBot struct {
	bot       *tele.Bot
	chat      tele.ChatID
	alertChat tele.ChatID
}

func New(cfg *config.Config) (*TGBot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		return nil, err
	}

	alertChat := cfg.Telegram.TestChatID
	if alertChat == 0 {
		alertChat = cfg.Telegram.ChatID
	}

	return &TGBot{
		bot:       b,
		chat:      tele.ChatID(cfg.Telegram.ChatID),
		alertChat: tele.ChatID(alertChat),
	}, nil
}

func (b *TGBot) Start(ctrl *telegram.Controller) {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes(ctrl)

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes(ctrl *telegram.Controller) {
	b.bot.Handle("/start", ctrl.Start)

	allowed := []int64{int64(b.chat), int64(b.alertChat)}
	b.bot.Handle("/report", ctrl.Report, customMW.AllowChats(allowed...))
}

// SendPhotos sends one photo, or an album when there are several, with caption on the first item.
func (b *TGBot) SendPhotos(ctx context.Context, paths []string, caption string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TGBot.SendPhotos"

	if b.chat == 0 {
		return ErrNoChat
	}
	if len(paths) == 0 {
		return errors.New("no photos to send")
	}

	slog.Debug("SendPhotos start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("photos", len(paths)))

	if len(paths) == 1 {
		_, err := b.bot.Send(b.chat, &tele.Photo{File: tele.FromDisk(paths[0]), Caption: caption})
		if err != nil {
			slog.Error("failed on sending photo", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return fmt.Errorf("send photo: %w", err)
		}
		return nil
	}

	album := make(tele.Album, 0, len(paths))
	for i, p := range paths {
		photo := &tele.Photo{File: tele.FromDisk(p)}
		if i == 0 {
			photo.Caption = caption
		}
		album = append(album, photo)
	}

	if _, err := b.bot.SendAlbum(b.chat, album); err != nil {
		slog.Error("failed on sending album", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("send album: %w", err)
	}

	slog.Debug("SendPhotos completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (b *TGBot) SendDocument(ctx context.Context, filename string, data []byte, caption string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TGBot.SendDocument"

	if b.chat == 0 {
		return ErrNoChat
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: filename,
		Caption:  caption,
	}

	if _, err := b.bot.Send(b.chat, doc); err != nil {
		slog.Error("failed on sending document", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}

// SendText delivers alerts to the test chat when one is configured.
func (b *TGBot) SendText(ctx context.Context, text string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TGBot.SendText"

	if b.alertChat == 0 {
		return ErrNoChat
	}

	if _, err := b.bot.Send(b.alertChat, text); err != nil {
		slog.Error("failed on sending text", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("send text: %w", err)
	}

	return nil
}
