package reportService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/internal/converter/reportConverter"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/contentApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/reportGenerator/htmlGenerator"
	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/shopspring/decimal"
)

const (
	tableTitleSuffix = "기관 순매수 상위 종목"
	apiErrorAlert    = "❌ API 오류 발생\n\n"
	renderErrorAlert = "❌ 리포트 이미지 생성 실패\n\n"
)

type MarketDataApi interface {
	FetchRanking(ctx context.Context) ([]model.RankingEntry, error)
	FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]model.PriceBar, error)
	FetchIndexHistory(ctx context.Context, market model.Market, date time.Time, period model.Period) (model.IndexSeries, error)
	FetchStockInfo(ctx context.Context, code string) (model.StockInfo, error)
}

type Repository interface {
	GetMarketCodes(ctx context.Context, market model.Market) ([]string, error)
	GetStockMarkets(ctx context.Context, codes []string) ([]model.StockInfo, error)
	UpsertStockMarkets(ctx context.Context, stocks []model.StockInfo) error
}

type Renderer interface {
	Render(ctx context.Context, table model.ReportTable) (string, error)
}

type Sender interface {
	SendPhotos(ctx context.Context, paths []string, caption string) error
	SendDocument(ctx context.Context, filename string, data []byte, caption string) error
	SendText(ctx context.Context, text string) error
}

type ContentPoster interface {
	CreatePost(ctx context.Context, post model.Post) error
}

type XlsxGenerator interface {
	Generate(ctx context.Context, table model.ReportTable) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// Deps groups collaborators of the service. Repository, ContentPoster, XlsxGenerator and CloudStorage are optional.
type Deps struct {
	Api           MarketDataApi
	Repository    Repository
	Renderer      Renderer
	Sender        Sender
	ContentPoster ContentPoster
	XlsxGenerator XlsxGenerator
	CloudStorage  CloudStorage
}

type ReportService struct {
	cfg  *config.Config
	loc  *time.Location
	deps Deps
	now  func() time.Time
	// shared by scheduled and on demand runs
	running atomic.Bool
}

func New(cfg *config.Config, deps Deps) *ReportService {
	return &ReportService{
		cfg:  cfg,
		loc:  cfg.Location(),
		deps: deps,
		now:  time.Now,
	}
}

// Run produces today's institutional net-buy report and distributes it.
// Failures before rendering abort the run and are returned. A render failure is reported to the alert chat instead.
// Only one run is active at a time, a concurrent call gets service.ErrRunInProgress.
func (s *ReportService) Run(ctx context.Context) error {
	ctx = utils.WithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.Run"

	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("report run already in progress", slog.String("rqID", rqID), slog.String("op", op))
		return service.ErrRunInProgress
	}
	defer s.running.Store(false)

	slog.Info("Run start", slog.String("rqID", rqID), slog.String("op", op))

	ranking, err := s.deps.Api.FetchRanking(ctx)
	if err != nil {
		slog.Error("failed on FetchRanking", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("fetch ranking: %w", err)
	}

	top := ranking[:min(len(ranking), s.cfg.Report.TopN)]
	today := s.now().In(s.loc)

	entries, err := s.enrich(ctx, top, today)
	if err != nil {
		return err
	}

	table := reportConverter.ToReportTable(
		entries,
		reportConverter.Title(today, tableTitleSuffix),
		today,
		s.cfg.Report.AmountDivisor,
	)

	path, err := s.deps.Renderer.Render(ctx, table)
	if err != nil {
		slog.Error("failed on Render", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		var renderErr *htmlGenerator.RenderError
		if !errors.As(err, &renderErr) {
			return fmt.Errorf("render: %w", err)
		}
		_ = s.alert(ctx, renderErrorAlert+err.Error())
		return nil
	}

	if err := s.distribute(ctx, path, table, today); err != nil {
		return err
	}

	slog.Info("Run completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path), slog.Int("rows", len(table.Rows)))

	return nil
}

func (s *ReportService) enrich(ctx context.Context, top []model.RankingEntry, today time.Time) ([]model.EnrichedEntry, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.enrich"

	if len(top) == 0 {
		slog.Warn("ranking is empty", slog.String("rqID", rqID), slog.String("op", op))
		return nil, nil
	}

	indexChanges, refDate, err := s.indexContext(ctx, today)
	if err != nil {
		slog.Error("failed on indexContext", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	membership, err := s.membership(ctx, top)
	if err != nil {
		slog.Error("failed on membership", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	enriched := CompareWithHistory(ctx, s.deps.Api, top, refDate)

	return ClassifyMarkets(enriched, membership, indexChanges), nil
}

// indexContext returns change per market and the reference date shared by all lookups.
func (s *ReportService) indexContext(ctx context.Context, today time.Time) (map[model.Market]decimal.Decimal, time.Time, error) {
	lookback := s.cfg.Report.LookbackRows
	changes := make(map[model.Market]decimal.Decimal, 2)

	var refDate time.Time
	for _, market := range []model.Market{model.MarketKospi, model.MarketKosdaq} {
		series, err := s.deps.Api.FetchIndexHistory(ctx, market, today, model.PeriodDaily)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("fetch %s index: %w", market, err)
		}

		change, err := IndexChangePct(series, lookback)
		if err != nil {
			return nil, time.Time{}, err
		}
		changes[market] = change

		if market == model.MarketKospi {
			refDate, err = ReferenceDate(series, lookback)
			if err != nil {
				return nil, time.Time{}, err
			}
		}
	}

	slog.Debug(
		"index context",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("refDate", refDate.Format(time.DateOnly)),
		slog.String("kospi", changes[model.MarketKospi].String()),
		slog.String("kosdaq", changes[model.MarketKosdaq].String()),
	)

	return changes, refDate, nil
}

func caption(date time.Time, n int) string {
	return fmt.Sprintf("%s 기관 순매수 상위 TOP %d", date.Format(time.DateOnly), n)
}

// distribute sends the image and the optional companions. Every channel is tried, failures are joined.
func (s *ReportService) distribute(ctx context.Context, path string, table model.ReportTable, date time.Time) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.distribute"

	text := caption(date, len(table.Rows))
	var errs []error

	if err := s.deps.Sender.SendPhotos(ctx, []string{path}, text); err != nil {
		errs = append(errs, fmt.Errorf("send photos: %w", err))
	}

	if s.deps.XlsxGenerator != nil && s.cfg.Report.XlsxEnabled {
		if err := s.sendXlsx(ctx, table, text); err != nil {
			errs = append(errs, err)
		}
	}

	if s.deps.ContentPoster != nil {
		if err := s.post(ctx, path, text); err != nil {
			errs = append(errs, err)
		}
	}

	if s.deps.CloudStorage != nil {
		if link, err := s.upload(ctx, path); err != nil {
			errs = append(errs, err)
		} else {
			slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", link))
		}
	}

	if len(errs) > 0 {
		slog.Error("distribution failed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("failures", len(errs)))
	}

	return errors.Join(errs...)
}

func (s *ReportService) sendXlsx(ctx context.Context, table model.ReportTable, text string) error {
	data, ext, err := s.deps.XlsxGenerator.Generate(ctx, table)
	if err != nil {
		return fmt.Errorf("generate xlsx: %w", err)
	}
	filename := fmt.Sprintf("%s_%s%s", s.cfg.Report.Name, table.Date.Format("20060102"), ext)
	if err := s.deps.Sender.SendDocument(ctx, filename, data, text); err != nil {
		return fmt.Errorf("send xlsx: %w", err)
	}
	return nil
}

func (s *ReportService) post(ctx context.Context, path, title string) error {
	err := s.deps.ContentPoster.CreatePost(ctx, model.Post{
		Title:      title,
		Content:    fmt.Sprintf(`<p>%s</p><p><img src="%s"></p>`, title, filepath.Base(path)),
		Category:   s.cfg.ContentApi.Category,
		Writer:     s.cfg.ContentApi.Writer,
		ImagePaths: []string{path},
	})
	if err == nil {
		return nil
	}

	// a refused post is handled once the alert is delivered
	var postErr *contentApi.PostError
	if errors.As(err, &postErr) {
		if alertErr := s.alert(ctx, apiErrorAlert+postErr.Message); alertErr != nil {
			return fmt.Errorf("create post: %w", errors.Join(err, alertErr))
		}
		return nil
	}

	_ = s.alert(ctx, apiErrorAlert+err.Error())
	return fmt.Errorf("create post: %w", err)
}

func (s *ReportService) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	link, err := s.deps.CloudStorage.UploadFile(ctx, bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return link, nil
}

func (s *ReportService) alert(ctx context.Context, text string) error {
	if err := s.deps.Sender.SendText(ctx, strings.TrimSpace(text)); err != nil {
		slog.Error("failed on alert", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return err
	}
	return nil
}
