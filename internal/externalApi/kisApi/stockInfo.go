package kisApi

import (
	"context"

	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/kisModel"
)

const (
	stockInfoPath = "/uapi/domestic-stock/v1/quotations/search-stock-info"
	stockInfoTrID = "CTPF1002R"
)

func (a *KisApi) FetchStockInfo(ctx context.Context, code string) (model.StockInfo, error) {
	op := "KisApi.FetchStockInfo"

	params := map[string]string{
		"PRDT_TYPE_CD": "300", // stocks
		"PDNO":         code,
	}

	raw := kisModel.RawStockInfo{}
	if err := a.get(ctx, op, stockInfoPath, stockInfoTrID, params, &raw); err != nil {
		return model.StockInfo{}, err
	}

	if raw.Output.MarketID == "" {
		return model.StockInfo{}, externalApi.ErrNotFound
	}

	return model.StockInfo{
		Code:   code,
		Name:   raw.Output.Name,
		Market: model.MarketFromKisID(raw.Output.MarketID),
	}, nil
}
