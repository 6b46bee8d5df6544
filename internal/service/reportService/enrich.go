package reportService

import (
	"context"
	"log/slog"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PriceHistoryFetcher interface {
	FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]model.PriceBar, error)
}

// CompareWithHistory compares every entry with its close at refDate, one request per entry in ranking order.
// An entry whose lookup fails keeps zero historical price and change; the rest of the batch is unaffected.
func CompareWithHistory(ctx context.Context, fetcher PriceHistoryFetcher, entries []model.RankingEntry, refDate time.Time) []model.EnrichedEntry {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "reportService.CompareWithHistory"

	res := make([]model.EnrichedEntry, 0, len(entries))
	fallbacks := 0

	for _, entry := range entries {
		history := lookupHistory(ctx, fetcher, entry, refDate)
		if history.Kind == model.HistoryFallback {
			fallbacks++
			slog.Warn(
				"historical price unavailable, using zero",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("code", entry.Code),
				slog.String("err", history.Reason.Error()),
			)
		}

		res = append(res, model.EnrichedEntry{
			RankingEntry:    entry,
			History:         history,
			HistoricalPrice: history.Close,
			ChangePct:       history.ChangePct,
			Market:          model.MarketUnknown,
		})
	}

	slog.Debug("CompareWithHistory completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("entries", len(res)), slog.Int("fallbacks", fallbacks))

	return res
}

func lookupHistory(ctx context.Context, fetcher PriceHistoryFetcher, entry model.RankingEntry, refDate time.Time) model.HistoryResult {
	bars, err := fetcher.FetchPriceHistory(ctx, entry.Code, refDate, refDate)
	if err != nil {
		return fallback(err)
	}

	for _, bar := range bars {
		if !bar.Close.Valid || bar.Close.Decimal.IsZero() {
			continue
		}
		closePrice := bar.Close.Decimal
		return model.HistoryResult{
			Kind:      model.HistoryFound,
			Close:     closePrice,
			ChangePct: PctChange(entry.Price, closePrice),
		}
	}

	return fallback(service.ErrNoHistory)
}

func fallback(reason error) model.HistoryResult {
	return model.HistoryResult{
		Kind:      model.HistoryFallback,
		Close:     decimal.Zero,
		ChangePct: decimal.Zero,
		Reason:    reason,
	}
}

// PctChange is (current - base) / base * 100 rounded to 2 places; zero when base is zero.
func PctChange(current, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return current.Sub(base).Div(base).Mul(hundred).Round(2)
}
