package reportConverter

import (
	"testing"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPct(t *testing.T) {
	cases := []struct {
		in   string
		text string
		dir  model.Direction
	}{
		{"1.23", "1.23%", model.Positive},
		{"-0.01", "-0.01%", model.Negative},
		{"0", "0.00%", model.Neutral},
		{"12.345", "12.35%", model.Positive},
		{"-0.004", "0.00%", model.Neutral},
		{"-3.1", "-3.10%", model.Negative},
	}
	for _, tc := range cases {
		got := FormatPct(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.text, got.Text, tc.in)
		assert.Equal(t, tc.dir, got.Direction, tc.in)
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "71,500", FormatInt(71500))
	assert.Equal(t, "-1,234,567", FormatInt(-1234567))
	assert.Equal(t, "0", FormatInt(0))
}

func TestToReportTable(t *testing.T) {
	date := time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)
	entries := []model.EnrichedEntry{
		{
			RankingEntry: model.RankingEntry{
				Code:         "005930",
				Name:         "삼성전자",
				Price:        decimal.RequireFromString("55300"),
				NetBuyQty:    1234567,
				NetBuyAmount: decimal.RequireFromString("88123"),
			},
			ChangePct:      decimal.RequireFromString("1.23"),
			IndexChangePct: decimal.RequireFromString("-0.01"),
			Market:         model.MarketKospi,
		},
		{
			RankingEntry: model.RankingEntry{
				Code:         "247540",
				Name:         "에코프로비엠",
				Price:        decimal.RequireFromString("98000"),
				NetBuyQty:    -500,
				NetBuyAmount: decimal.RequireFromString("-50"),
			},
			Market: model.MarketKosdaq,
		},
	}

	table := ToReportTable(entries, Title(date, "기관 순매수 상위 종목"), date, 100)

	assert.Equal(t, "2025-05-30 기관 순매수 상위 종목", table.Title)
	assert.Equal(t, date, table.Date)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "삼성전자", first.Name)
	assert.Equal(t, "005930", first.Code)
	assert.Equal(t, "55,300", first.Price)
	assert.Equal(t, model.PctCell{Text: "1.23%", Direction: model.Positive}, first.StockChange)
	assert.Equal(t, model.PctCell{Text: "-0.01%", Direction: model.Negative}, first.IndexChange)
	assert.Equal(t, "1,234,567", first.NetBuyQty)
	assert.Equal(t, "881.23", first.NetBuyAmount)

	second := table.Rows[1]
	assert.Equal(t, "247540", second.Code)
	assert.Equal(t, model.PctCell{Text: "0.00%", Direction: model.Neutral}, second.StockChange)
	assert.Equal(t, "-500", second.NetBuyQty)
	assert.Equal(t, "-0.50", second.NetBuyAmount)
}

func TestToReportTable_Empty(t *testing.T) {
	table := ToReportTable(nil, "t", time.Time{}, 100)
	assert.Empty(t, table.Rows)
}
