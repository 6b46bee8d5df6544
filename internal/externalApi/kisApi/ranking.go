package kisApi

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/kisModel"
	"github.com/KotFed0t/netbuy_report_bot/utils"
)

const (
	rankingPath = "/uapi/domestic-stock/v1/quotations/foreign-institution-total"
	rankingTrID = "FHPTJ04400000"
)

// FetchRanking returns the institutional net-buy ranking by quantity over all segments, in the order KIS ranks it.
func (a *KisApi) FetchRanking(ctx context.Context) ([]model.RankingEntry, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "KisApi.FetchRanking"

	params := map[string]string{
		"FID_COND_MRKT_DIV_CODE": "V",
		"FID_COND_SCR_DIV_CODE":  "16449",
		"FID_INPUT_ISCD":         "0000", // all segments
		"FID_DIV_CLS_CODE":       "0",    // 0: by quantity, 1: by amount
		"FID_RANK_SORT_CLS_CODE": "0",    // 0: net buy, 1: net sell
		"FID_ETC_CLS_CODE":       "2",    // 0: all, 1: foreigners, 2: institutions, 3: other
	}

	raw := kisModel.RawRanking{}
	if err := a.get(ctx, op, rankingPath, rankingTrID, params, &raw); err != nil {
		return nil, err
	}

	res := make([]model.RankingEntry, 0, len(raw.Output))
	for _, item := range raw.Output {
		if item.Code == "" {
			continue
		}

		entry := model.RankingEntry{
			Code:              item.Code,
			Name:              item.Name,
			Price:             parseDecimal(item.Price).Decimal,
			PrevDayChangeRate: parseDecimal(item.PrevDayRate).Decimal,
			NetBuyQty:         parseInt(item.OrgnNetBuyQty).Int64,
			NetBuyAmount:      parseDecimal(item.OrgnNetBuyAmt).Decimal,
		}
		res = append(res, entry)
	}

	slog.Debug("got ranking", slog.String("rqID", rqID), slog.String("op", op), slog.Int("entries", len(res)))

	return res, nil
}
