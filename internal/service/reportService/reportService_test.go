package reportService

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/data/tokenStore"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/contentApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/kisApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/reportGenerator/htmlGenerator"
	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-05-30 16:00 KST
var runTime = time.Date(2025, 5, 30, 7, 0, 0, 0, time.UTC)

type fakeApi struct {
	ranking    []model.RankingEntry
	rankingErr error
	index      map[model.Market]model.IndexSeries
	indexErr   error
	history    map[string][]model.PriceBar
	info       map[string]model.StockInfo

	calls       []string
	historyDate []time.Time

	// when set, FetchRanking signals rankingStarted and waits for rankingRelease
	rankingStarted chan struct{}
	rankingRelease chan struct{}
}

func (f *fakeApi) FetchRanking(context.Context) ([]model.RankingEntry, error) {
	f.calls = append(f.calls, "ranking")
	if f.rankingStarted != nil {
		close(f.rankingStarted)
		<-f.rankingRelease
	}
	return f.ranking, f.rankingErr
}

func (f *fakeApi) FetchPriceHistory(_ context.Context, code string, start, _ time.Time) ([]model.PriceBar, error) {
	f.calls = append(f.calls, "history:"+code)
	f.historyDate = append(f.historyDate, start)
	return f.history[code], nil
}

func (f *fakeApi) FetchIndexHistory(_ context.Context, market model.Market, _ time.Time, _ model.Period) (model.IndexSeries, error) {
	f.calls = append(f.calls, "index:"+string(market))
	if f.indexErr != nil {
		return model.IndexSeries{}, f.indexErr
	}
	return f.index[market], nil
}

func (f *fakeApi) FetchStockInfo(_ context.Context, code string) (model.StockInfo, error) {
	f.calls = append(f.calls, "info:"+code)
	info, ok := f.info[code]
	if !ok {
		return model.StockInfo{}, externalApi.ErrNotFound
	}
	return info, nil
}

func (f *fakeApi) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type sentPhoto struct {
	paths   []string
	caption string
}

type fakeSender struct {
	photos  []sentPhoto
	docs    []string
	texts   []string
	textErr error
}

func (s *fakeSender) SendPhotos(_ context.Context, paths []string, caption string) error {
	s.photos = append(s.photos, sentPhoto{paths: paths, caption: caption})
	return nil
}

func (s *fakeSender) SendDocument(_ context.Context, filename string, _ []byte, _ string) error {
	s.docs = append(s.docs, filename)
	return nil
}

func (s *fakeSender) SendText(_ context.Context, text string) error {
	s.texts = append(s.texts, text)
	return s.textErr
}

type pngRasterizer struct {
	html []byte
}

func (r *pngRasterizer) Check() error {
	return nil
}

func (r *pngRasterizer) Rasterize(_ context.Context, html []byte, outPath string) error {
	r.html = html
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, model.ReportTable) (string, error) {
	return "", &htmlGenerator.RenderError{Op: "rasterize", Err: errors.New("wkhtmltoimage exited 1")}
}

type fakePoster struct {
	err   error
	posts []model.Post
}

func (p *fakePoster) CreatePost(_ context.Context, post model.Post) error {
	p.posts = append(p.posts, post)
	return p.err
}

type memRepo struct {
	stocks   map[string]model.StockInfo
	upserted []model.StockInfo
}

func (r *memRepo) GetMarketCodes(_ context.Context, market model.Market) ([]string, error) {
	var codes []string
	for code, st := range r.stocks {
		if st.Market == market {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (r *memRepo) GetStockMarkets(_ context.Context, codes []string) ([]model.StockInfo, error) {
	var res []model.StockInfo
	for _, code := range codes {
		if st, ok := r.stocks[code]; ok {
			res = append(res, st)
		}
	}
	return res, nil
}

func (r *memRepo) UpsertStockMarkets(_ context.Context, stocks []model.StockInfo) error {
	r.upserted = append(r.upserted, stocks...)
	for _, st := range stocks {
		r.stocks[st.Code] = st
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Timezone: "Asia/Seoul",
		Report: config.Report{
			Name:          "report",
			TopN:          10,
			LookbackRows:  30,
			AmountDivisor: 100,
		},
		ContentApi: config.ContentApi{Category: "기관순매수", Writer: "admin"},
	}
}

// series returns lookback+1 daily bars from latest down to prior, newest first.
func series(market model.Market, latest, prior string, lookback int) model.IndexSeries {
	s := model.IndexSeries{Market: market, Period: model.PeriodDaily}
	for i := 0; i <= lookback; i++ {
		c := latest
		if i == lookback {
			c = prior
		}
		s.Bars = append(s.Bars, model.IndexBar{
			Date:  time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
			Close: decimal.NewNullDecimal(decimal.RequireFromString(c)),
		})
	}
	return s
}

func newFakeApi(n int) *fakeApi {
	api := &fakeApi{
		index: map[model.Market]model.IndexSeries{
			model.MarketKospi:  series(model.MarketKospi, "2600", "2500", 30),
			model.MarketKosdaq: series(model.MarketKosdaq, "800", "1000", 30),
		},
		history: map[string][]model.PriceBar{},
		info:    map[string]model.StockInfo{},
	}
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("%06d", i+1)
		market := model.MarketKospi
		if i%2 == 1 {
			market = model.MarketKosdaq
		}
		api.ranking = append(api.ranking, model.RankingEntry{
			Code:         code,
			Name:         fmt.Sprintf("종목%02d", i+1),
			Price:        decimal.NewFromInt(11000),
			NetBuyQty:    int64(1000 * (n - i)),
			NetBuyAmount: decimal.NewFromInt(int64(10000 * (n - i))),
		})
		api.history[code] = []model.PriceBar{{Close: decimal.NewNullDecimal(decimal.NewFromInt(10000))}}
		api.info[code] = model.StockInfo{Code: code, Market: market}
	}
	return api
}

func newService(cfg *config.Config, deps Deps) *ReportService {
	s := New(cfg, deps)
	s.now = func() time.Time { return runTime }
	return s
}

func TestRun_TopTenReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_20250529.png"), []byte("old"), 0o644))

	api := newFakeApi(12)
	api.ranking[0].Price = decimal.NewFromInt(10123)
	api.ranking[1].Price = decimal.NewFromInt(9999)
	api.ranking[2].Price = decimal.NewFromInt(10000)
	sender := &fakeSender{}
	raster := &pngRasterizer{}

	svc := newService(testConfig(), Deps{
		Api:      api,
		Renderer: htmlGenerator.New(raster, htmlGenerator.DefaultStyle(), dir, "report"),
		Sender:   sender,
	})

	require.NoError(t, svc.Run(context.Background()))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report_20250530.png", files[0].Name())

	require.Len(t, sender.photos, 1)
	assert.Equal(t, []string{filepath.Join(dir, "report_20250530.png")}, sender.photos[0].paths)
	assert.Equal(t, "2025-05-30 기관 순매수 상위 TOP 10", sender.photos[0].caption)
	assert.Empty(t, sender.texts)

	assert.Equal(t, "ranking", api.calls[0])
	assert.Equal(t, 10, api.count("history:"))
	assert.Equal(t, 10, api.count("info:"))
	for _, d := range api.historyDate {
		assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), d)
	}

	html := string(raster.html)
	assert.Contains(t, html, "2025-05-30 기관 순매수 상위 종목")
	assert.Contains(t, html, "종목10")
	assert.NotContains(t, html, "종목11")
	assert.Contains(t, html, `<td class="change"><span class="positive">4.00%</span> / <span class="positive">1.23%</span></td>`)
	assert.Contains(t, html, `<td class="change"><span class="negative">-20.00%</span> / <span class="negative">-0.01%</span></td>`)
	assert.Contains(t, html, `<td class="change"><span class="positive">4.00%</span> / <span>0.00%</span></td>`)
	assert.Contains(t, html, `<td class="change"><span class="negative">-20.00%</span> / <span class="positive">10.00%</span></td>`)
	assert.Equal(t, 10*5, strings.Count(html, "<td"))
	assert.Contains(t, html, "<td>1,200.00</td>")
}

func TestRun_RankingApiErrorStopsBeforeEnrichment(t *testing.T) {
	api := newFakeApi(3)
	api.rankingErr = &externalApi.ApiError{Path: "/ranking", Code: "EGW00201", Message: "초당 거래건수를 초과하였습니다."}
	sender := &fakeSender{}

	err := newService(testConfig(), Deps{Api: api, Renderer: failingRenderer{}, Sender: sender}).Run(context.Background())

	var apiErr *externalApi.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "EGW00201", apiErr.Code)
	assert.Equal(t, []string{"ranking"}, api.calls)
	assert.Empty(t, sender.photos)
	assert.Empty(t, sender.texts)
}

func TestRun_IndexFailureAborts(t *testing.T) {
	api := newFakeApi(3)
	api.indexErr = &externalApi.ApiError{Code: "EGW00123", Message: "expired"}

	err := newService(testConfig(), Deps{Api: api, Renderer: failingRenderer{}, Sender: &fakeSender{}}).Run(context.Background())

	require.Error(t, err)
	assert.Zero(t, api.count("history:"))
}

func TestRun_MissingClientIDMakesNoRequests(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Kis = config.Kis{UrlBase: srv.URL, AppSecret: "secret"}
	cfg.API.Timeout = 5 * time.Second

	store := tokenStore.NewFileStore(filepath.Join(t.TempDir(), "token.json"), cfg.Location())
	api := kisApi.New(cfg, kisApi.NewTokenProvider(cfg, store))
	sender := &fakeSender{}

	err := newService(cfg, Deps{Api: api, Renderer: failingRenderer{}, Sender: sender}).Run(context.Background())

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"KIS_APP_KEY"}, cfgErr.Missing)
	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.Empty(t, sender.photos)
}

func TestRun_RenderFailureIsReported(t *testing.T) {
	sender := &fakeSender{}

	err := newService(testConfig(), Deps{Api: newFakeApi(3), Renderer: failingRenderer{}, Sender: sender}).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sender.photos)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "wkhtmltoimage exited 1")
}

func TestRun_EmptyRankingIsReportedAsRenderFailure(t *testing.T) {
	api := newFakeApi(0)
	sender := &fakeSender{}

	svc := newService(testConfig(), Deps{
		Api:      api,
		Renderer: htmlGenerator.New(&pngRasterizer{}, htmlGenerator.DefaultStyle(), t.TempDir(), "report"),
		Sender:   sender,
	})

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, []string{"ranking"}, api.calls)
	assert.Empty(t, sender.photos)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], htmlGenerator.ErrEmptyTable.Error())
}

func TestRun_PostErrorIsAlerted(t *testing.T) {
	sender := &fakeSender{}
	poster := &fakePoster{err: &contentApi.PostError{StatusCode: 400, Message: "duplicate title"}}

	svc := newService(testConfig(), Deps{
		Api:           newFakeApi(2),
		Renderer:      htmlGenerator.New(&pngRasterizer{}, htmlGenerator.DefaultStyle(), t.TempDir(), "report"),
		Sender:        sender,
		ContentPoster: poster,
	})

	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, sender.photos, 1)
	assert.Equal(t, []string{"❌ API 오류 발생\n\nduplicate title"}, sender.texts)

	require.Len(t, poster.posts, 1)
	assert.Equal(t, "기관순매수", poster.posts[0].Category)
	assert.Equal(t, "admin", poster.posts[0].Writer)
	assert.Equal(t, "2025-05-30 기관 순매수 상위 TOP 2", poster.posts[0].Title)
	assert.Len(t, poster.posts[0].ImagePaths, 1)
}

func TestRun_PostErrorFailsWhenAlertIsNotDelivered(t *testing.T) {
	sender := &fakeSender{textErr: errors.New("chat not found")}

	svc := newService(testConfig(), Deps{
		Api:           newFakeApi(2),
		Renderer:      htmlGenerator.New(&pngRasterizer{}, htmlGenerator.DefaultStyle(), t.TempDir(), "report"),
		Sender:        sender,
		ContentPoster: &fakePoster{err: &contentApi.PostError{StatusCode: 400, Message: "duplicate title"}},
	})

	err := svc.Run(context.Background())

	var postErr *contentApi.PostError
	require.ErrorAs(t, err, &postErr)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Len(t, sender.photos, 1)
}

func TestRun_PostTransportErrorIsReturned(t *testing.T) {
	sender := &fakeSender{}

	svc := newService(testConfig(), Deps{
		Api:           newFakeApi(2),
		Renderer:      htmlGenerator.New(&pngRasterizer{}, htmlGenerator.DefaultStyle(), t.TempDir(), "report"),
		Sender:        sender,
		ContentPoster: &fakePoster{err: errors.New("connection refused")},
	})

	err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"❌ API 오류 발생\n\nconnection refused"}, sender.texts)
}

func TestRun_SingleRunAtATime(t *testing.T) {
	api := newFakeApi(2)
	api.rankingErr = errors.New("stop after ranking")
	api.rankingStarted = make(chan struct{})
	api.rankingRelease = make(chan struct{})

	svc := newService(testConfig(), Deps{Api: api, Renderer: failingRenderer{}, Sender: &fakeSender{}})

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- svc.Run(context.Background())
	}()
	<-api.rankingStarted

	assert.ErrorIs(t, svc.Run(context.Background()), service.ErrRunInProgress)

	close(api.rankingRelease)
	assert.EqualError(t, <-firstErr, "fetch ranking: stop after ranking")
	assert.Equal(t, []string{"ranking"}, api.calls)

	api.rankingStarted = nil
	assert.EqualError(t, svc.Run(context.Background()), "fetch ranking: stop after ranking")
}

func TestMembership_WithRepository(t *testing.T) {
	api := newFakeApi(0)
	api.info["247540"] = model.StockInfo{Code: "247540", Market: model.MarketKosdaq}
	repo := &memRepo{stocks: map[string]model.StockInfo{
		"005930": {Code: "005930", Market: model.MarketKospi},
	}}

	svc := newService(testConfig(), Deps{Api: api, Repository: repo})

	m, err := svc.membership(context.Background(), []model.RankingEntry{{Code: "005930"}, {Code: "247540"}, {Code: "999999"}})
	require.NoError(t, err)

	assert.Equal(t, model.MarketKospi, m.Resolve("005930"))
	assert.Equal(t, model.MarketKosdaq, m.Resolve("247540"))
	assert.Equal(t, model.MarketUnknown, m.Resolve("999999"))
	assert.Equal(t, []string{"info:247540", "info:999999"}, api.calls)
	assert.Equal(t, []model.StockInfo{{Code: "247540", Market: model.MarketKosdaq}}, repo.upserted)
}
