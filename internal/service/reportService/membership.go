package reportService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
)

// membership builds the market sets for this run.
// With a repository the stored lists are used and codes it does not know yet are looked up and saved.
// Without one every code is looked up directly.
func (s *ReportService) membership(ctx context.Context, entries []model.RankingEntry) (MarketMembership, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.membership"

	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, e.Code)
	}

	if s.deps.Repository == nil {
		return fromStocks(s.lookupStocks(ctx, codes)), nil
	}

	known, err := s.deps.Repository.GetStockMarkets(ctx, codes)
	if err != nil {
		slog.Error("failed on GetStockMarkets, looking up directly", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fromStocks(s.lookupStocks(ctx, codes)), nil
	}

	knownCodes := make(map[string]struct{}, len(known))
	for _, st := range known {
		knownCodes[st.Code] = struct{}{}
	}
	missing := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := knownCodes[code]; !ok {
			missing = append(missing, code)
		}
	}

	resolved := s.lookupStocks(ctx, missing)
	if len(resolved) > 0 {
		if err := s.deps.Repository.UpsertStockMarkets(ctx, resolved); err != nil {
			slog.Error("failed on UpsertStockMarkets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	kospi, errKospi := s.deps.Repository.GetMarketCodes(ctx, model.MarketKospi)
	kosdaq, errKosdaq := s.deps.Repository.GetMarketCodes(ctx, model.MarketKosdaq)
	if err := errors.Join(errKospi, errKosdaq); err != nil {
		slog.Error("failed on GetMarketCodes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fromStocks(append(known, resolved...)), nil
	}

	// codes resolved now are included even when the upsert failed
	for _, st := range resolved {
		switch st.Market {
		case model.MarketKospi:
			kospi = append(kospi, st.Code)
		case model.MarketKosdaq:
			kosdaq = append(kosdaq, st.Code)
		}
	}

	slog.Debug("membership built", slog.String("rqID", rqID), slog.String("op", op), slog.Int("kospi", len(kospi)), slog.Int("kosdaq", len(kosdaq)), slog.Int("resolved", len(resolved)))

	return NewMarketMembership(kospi, kosdaq), nil
}

// lookupStocks asks the api for each code. Codes that cannot be resolved are left out.
func (s *ReportService) lookupStocks(ctx context.Context, codes []string) []model.StockInfo {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.lookupStocks"

	res := make([]model.StockInfo, 0, len(codes))
	for _, code := range codes {
		info, err := s.deps.Api.FetchStockInfo(ctx, code)
		if err != nil {
			level := slog.LevelError
			if errors.Is(err, externalApi.ErrNotFound) {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "failed on FetchStockInfo", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.String("err", err.Error()))
			continue
		}
		if info.Market == model.MarketUnknown {
			continue
		}
		res = append(res, info)
	}
	return res
}

func fromStocks(stocks []model.StockInfo) MarketMembership {
	var kospi, kosdaq []string
	for _, st := range stocks {
		switch st.Market {
		case model.MarketKospi:
			kospi = append(kospi, st.Code)
		case model.MarketKosdaq:
			kosdaq = append(kosdaq, st.Code)
		}
	}
	return NewMarketMembership(kospi, kosdaq)
}
