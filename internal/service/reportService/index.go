package reportService

import (
	"fmt"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/shopspring/decimal"
)

// IndexChangePct compares the newest close of series with the close lookback rows before it.
func IndexChangePct(series model.IndexSeries, lookback int) (decimal.Decimal, error) {
	if lookback <= 0 || len(series.Bars) <= lookback {
		return decimal.Zero, fmt.Errorf("%s: %d bars for lookback %d: %w", series.Market, len(series.Bars), lookback, service.ErrNotEnoughIndexData)
	}

	latest, prior := series.Bars[0].Close, series.Bars[lookback].Close
	if !latest.Valid || !prior.Valid || prior.Decimal.IsZero() {
		return decimal.Zero, fmt.Errorf("%s: missing close: %w", series.Market, service.ErrNotEnoughIndexData)
	}

	return PctChange(latest.Decimal, prior.Decimal), nil
}

// ReferenceDate is the trading date lookback rows before the newest bar.
// Stock changes are measured from this date so both columns share one window.
func ReferenceDate(series model.IndexSeries, lookback int) (time.Time, error) {
	if lookback <= 0 || len(series.Bars) <= lookback {
		return time.Time{}, fmt.Errorf("%s: %d bars for lookback %d: %w", series.Market, len(series.Bars), lookback, service.ErrNotEnoughIndexData)
	}
	return series.Bars[lookback].Date, nil
}
