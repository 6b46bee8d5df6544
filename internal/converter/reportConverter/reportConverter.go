package reportConverter

import (
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const titleDateLayout = "2006-01-02"

var printer = message.NewPrinter(language.Korean)

// ToReportTable turns enriched entries into display rows, keeping their order.
// NetBuyAmount is reported in millions of KRW and divided by amountDivisor for display.
func ToReportTable(entries []model.EnrichedEntry, title string, date time.Time, amountDivisor int64) model.ReportTable {
	divisor := decimal.NewFromInt(amountDivisor)
	if amountDivisor <= 0 {
		divisor = decimal.NewFromInt(1)
	}

	rows := make([]model.ReportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.ReportRow{
			Name:         e.Name,
			Code:         e.Code,
			Price:        FormatInt(e.Price.IntPart()),
			IndexChange:  FormatPct(e.IndexChangePct),
			StockChange:  FormatPct(e.ChangePct),
			NetBuyQty:    FormatInt(e.NetBuyQty),
			NetBuyAmount: FormatAmount(e.NetBuyAmount.Div(divisor)),
		})
	}

	return model.ReportTable{
		Title: title,
		Date:  date,
		Rows:  rows,
	}
}

func Title(date time.Time, suffix string) string {
	return date.Format(titleDateLayout) + " " + suffix
}

// FormatPct renders v with two decimals and a percent sign. Direction follows the rounded value.
func FormatPct(v decimal.Decimal) model.PctCell {
	rounded := v.Round(2)

	dir := model.Neutral
	switch rounded.Sign() {
	case 1:
		dir = model.Positive
	case -1:
		dir = model.Negative
	}

	return model.PctCell{
		Text:      rounded.StringFixed(2) + "%",
		Direction: dir,
	}
}

func FormatInt(v int64) string {
	return printer.Sprintf("%d", v)
}

func FormatAmount(v decimal.Decimal) string {
	return printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
}
