package rasterizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/KotFed0t/netbuy_report_bot/utils"
)

var ErrBinaryNotConfigured = errors.New("error wkhtmltoimage path is not configured")

// Wkhtmltoimage runs the wkhtmltoimage binary, feeding the document through stdin.
type Wkhtmltoimage struct {
	binaryPath string
	width      int
}

func NewWkhtmltoimage(binaryPath string, width int) *Wkhtmltoimage {
	return &Wkhtmltoimage{binaryPath: binaryPath, width: width}
}

func (w *Wkhtmltoimage) Check() error {
	if w.binaryPath == "" {
		return ErrBinaryNotConfigured
	}
	info, err := os.Stat(w.binaryPath)
	if err != nil {
		return fmt.Errorf("wkhtmltoimage at %s: %w", w.binaryPath, err)
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		return fmt.Errorf("wkhtmltoimage at %s is not executable", w.binaryPath)
	}
	return nil
}

func (w *Wkhtmltoimage) args(outPath string) []string {
	return []string{
		"--quiet",
		"--format", "png",
		"--encoding", "UTF-8",
		"--quality", "100",
		"--width", strconv.Itoa(w.width),
		"--enable-local-file-access",
		"--minimum-font-size", "10",
		"-",
		outPath,
	}
}

func (w *Wkhtmltoimage) Rasterize(ctx context.Context, html []byte, outPath string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Wkhtmltoimage.Rasterize"

	slog.Debug("Rasterize start", slog.String("rqID", rqID), slog.String("op", op), slog.String("out", outPath))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.binaryPath, w.args(outPath)...)
	cmd.Stdin = bytes.NewReader(html)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		slog.Error("wkhtmltoimage failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("stderr", msg))
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}

	slog.Debug("Rasterize completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}
