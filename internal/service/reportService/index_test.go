package reportService

import (
	"testing"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)

// indexSeries builds a newest first series with closes[i] on day0 - i days.
func indexSeries(closes ...string) model.IndexSeries {
	s := model.IndexSeries{Market: model.MarketKospi, Period: model.PeriodDaily}
	for i, c := range closes {
		bar := model.IndexBar{Date: day0.AddDate(0, 0, -i)}
		if c != "" {
			bar.Close = decimal.NewNullDecimal(decimal.RequireFromString(c))
		}
		s.Bars = append(s.Bars, bar)
	}
	return s
}

func TestIndexChangePct(t *testing.T) {
	s := indexSeries("2600", "2550", "2500")

	pct, err := IndexChangePct(s, 2)
	require.NoError(t, err)
	assert.Equal(t, "4", pct.String())

	pct, err = IndexChangePct(s, 1)
	require.NoError(t, err)
	assert.Equal(t, "1.96", pct.String())
}

func TestIndexChangePct_NotEnoughRows(t *testing.T) {
	_, err := IndexChangePct(indexSeries("2600", "2550"), 2)
	assert.ErrorIs(t, err, service.ErrNotEnoughIndexData)

	_, err = IndexChangePct(indexSeries("2600", "2550"), 0)
	assert.ErrorIs(t, err, service.ErrNotEnoughIndexData)
}

func TestIndexChangePct_MissingClose(t *testing.T) {
	_, err := IndexChangePct(indexSeries("2600", ""), 1)
	assert.ErrorIs(t, err, service.ErrNotEnoughIndexData)

	_, err = IndexChangePct(indexSeries("2600", "0"), 1)
	assert.ErrorIs(t, err, service.ErrNotEnoughIndexData)
}

func TestReferenceDate(t *testing.T) {
	got, err := ReferenceDate(indexSeries("3", "2", "1"), 2)
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, -2), got)

	_, err = ReferenceDate(indexSeries("3"), 1)
	assert.ErrorIs(t, err, service.ErrNotEnoughIndexData)
}
