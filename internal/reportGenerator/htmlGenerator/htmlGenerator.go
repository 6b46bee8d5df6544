package htmlGenerator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
)

const fileDateLayout = "20060102"

var (
	ErrEmptyTable         = errors.New("error report table is empty")
	ErrRasterizerNotReady = errors.New("error rasterizer is not configured")
)

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// RenderError wraps every failure of producing the report image.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error on %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type Style struct {
	// css font-family value, template escaping does not apply to it
	FontFamily       template.CSS
	FontURL          string
	Width            int
	HeaderBackground template.CSS
	PositiveColor    template.CSS
	NegativeColor    template.CSS
	Source           string
}

func DefaultStyle() Style {
	return Style{
		FontFamily:       "'Noto Sans KR', sans-serif",
		FontURL:          "https://fonts.googleapis.com/css2?family=Noto+Sans+KR:wght@400;700&display=swap",
		Width:            600,
		HeaderBackground: "#f5f5f5",
		PositiveColor:    "#d32f2f",
		NegativeColor:    "#1976d2",
	}
}

type Rasterizer interface {
	Check() error
	Rasterize(ctx context.Context, html []byte, outPath string) error
}

type Renderer struct {
	rasterizer Rasterizer
	style      Style
	outputDir  string
	name       string
}

func New(rasterizer Rasterizer, style Style, outputDir, name string) *Renderer {
	return &Renderer{
		rasterizer: rasterizer,
		style:      style,
		outputDir:  outputDir,
		name:       name,
	}
}

// Generate returns the html document of table.
func Generate(table model.ReportTable, style Style) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Table model.ReportTable
		Style Style
	}{Table: table, Style: style})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes table as <outputDir>/<name>_<YYYYMMDD>.png and returns the path.
// Earlier images with the same name are removed first.
func (r *Renderer) Render(ctx context.Context, table model.ReportTable) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Renderer.Render"

	slog.Debug("Render start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(table.Rows)))

	if len(table.Rows) == 0 {
		return "", &RenderError{Op: "validate", Err: ErrEmptyTable}
	}

	if r.rasterizer == nil {
		return "", &RenderError{Op: "check", Err: ErrRasterizerNotReady}
	}
	if err := r.rasterizer.Check(); err != nil {
		return "", &RenderError{Op: "check", Err: err}
	}

	html, err := Generate(table, r.style)
	if err != nil {
		return "", &RenderError{Op: "template", Err: err}
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", &RenderError{Op: "mkdir", Err: err}
	}

	if err := r.deleteOld(ctx, ".png"); err != nil {
		return "", &RenderError{Op: "cleanup", Err: err}
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("%s_%s.png", r.name, table.Date.Format(fileDateLayout)))

	if err := r.rasterizer.Rasterize(ctx, html, path); err != nil {
		return "", &RenderError{Op: "rasterize", Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		return "", &RenderError{Op: "rasterize", Err: err}
	}

	slog.Debug("Render completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	return path, nil
}

func (r *Renderer) deleteOld(ctx context.Context, ext string) error {
	entries, err := os.ReadDir(r.outputDir)
	if err != nil {
		return err
	}

	prefix := r.name + "_"
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || filepath.Ext(e.Name()) != ext {
			continue
		}
		if err := os.Remove(filepath.Join(r.outputDir, e.Name())); err != nil {
			return err
		}
		slog.Debug("old report removed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("file", e.Name()))
	}
	return nil
}
