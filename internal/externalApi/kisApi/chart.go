package kisApi

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/kisModel"
	"github.com/KotFed0t/netbuy_report_bot/utils"
)

const (
	dailyChartPath = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	dailyChartTrID = "FHKST03010100"

	indexDailyPath = "/uapi/domestic-stock/v1/quotations/inquire-index-daily-price"
	indexDailyTrID = "FHPUP02120000"
)

// FetchPriceHistory returns daily bars of one stock between start and end inclusive, newest first.
func (a *KisApi) FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]model.PriceBar, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "KisApi.FetchPriceHistory"

	params := map[string]string{
		"FID_COND_MRKT_DIV_CODE": "J",
		"FID_INPUT_ISCD":         code,
		"FID_INPUT_DATE_1":       start.In(a.loc).Format(dateLayout),
		"FID_INPUT_DATE_2":       end.In(a.loc).Format(dateLayout),
		"FID_PERIOD_DIV_CODE":    string(model.PeriodDaily),
		"FID_ORG_ADJ_PRC":        "0",
	}

	raw := kisModel.RawDailyChart{}
	if err := a.get(ctx, op, dailyChartPath, dailyChartTrID, params, &raw); err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(raw.Output2))
	for _, item := range raw.Output2 {
		// KIS pads missing days with empty objects
		if item.Date == "" {
			continue
		}

		date, err := a.parseDate(item.Date)
		if err != nil {
			slog.Warn("skip bar with invalid date", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.String("date", item.Date))
			continue
		}

		bars = append(bars, model.PriceBar{
			Date:   date,
			Open:   parseDecimal(item.Open),
			High:   parseDecimal(item.High),
			Low:    parseDecimal(item.Low),
			Close:  parseDecimal(item.Close),
			Volume: parseInt(item.Volume),
		})
	}

	slices.SortStableFunc(bars, func(x, y model.PriceBar) int {
		return y.Date.Compare(x.Date)
	})

	return bars, nil
}

// FetchIndexHistory returns the composite index series of market ending at date, newest first.
// Only fields present in the response are filled.
func (a *KisApi) FetchIndexHistory(ctx context.Context, market model.Market, date time.Time, period model.Period) (model.IndexSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "KisApi.FetchIndexHistory"

	indexCode, ok := market.IndexCode()
	if !ok {
		return model.IndexSeries{}, fmt.Errorf("%s: no index for market %s", op, market)
	}

	params := map[string]string{
		"FID_PERIOD_DIV_CODE":    string(period),
		"FID_COND_MRKT_DIV_CODE": "U",
		"FID_INPUT_ISCD":         indexCode,
		"FID_INPUT_DATE_1":       date.In(a.loc).Format(dateLayout),
	}

	raw := kisModel.RawIndexDaily{}
	if err := a.get(ctx, op, indexDailyPath, indexDailyTrID, params, &raw); err != nil {
		return model.IndexSeries{}, err
	}

	series := model.IndexSeries{Market: market, Period: period, Bars: make([]model.IndexBar, 0, len(raw.Output2))}
	for _, row := range raw.Output2 {
		rawDate, ok := text(row["stck_bsop_date"])
		if !ok || rawDate == "" {
			continue
		}

		barDate, err := a.parseDate(rawDate)
		if err != nil {
			slog.Warn("skip index bar with invalid date", slog.String("rqID", rqID), slog.String("op", op), slog.String("date", rawDate))
			continue
		}

		bar := model.IndexBar{Date: barDate}
		if v, ok := text(row["bstp_nmix_prpr"]); ok {
			bar.Close = parseDecimal(v)
		}
		if v, ok := text(row["bstp_nmix_oprc"]); ok {
			bar.Open = parseDecimal(v)
		}
		if v, ok := text(row["bstp_nmix_hgpr"]); ok {
			bar.High = parseDecimal(v)
		}
		if v, ok := text(row["bstp_nmix_lwpr"]); ok {
			bar.Low = parseDecimal(v)
		}
		if v, ok := text(row["acml_vol"]); ok {
			bar.Volume = parseInt(v)
		}
		series.Bars = append(series.Bars, bar)
	}

	slices.SortStableFunc(series.Bars, func(x, y model.IndexBar) int {
		return y.Date.Compare(x.Date)
	})

	slog.Debug("got index series", slog.String("rqID", rqID), slog.String("op", op), slog.String("market", string(market)), slog.Int("bars", len(series.Bars)))

	return series, nil
}
