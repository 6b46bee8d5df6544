package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "기관순매수"

var headers = []string{"종목명", "종목코드", "현재가", "지수 / 종목 등락률", "기관 순매수량", "기관 순매수금액(억원)"}

type XSLSXGenerator struct {
	positiveColor string
	negativeColor string
}

func New(positiveColor, negativeColor string) *XSLSXGenerator {
	return &XSLSXGenerator{positiveColor: positiveColor, negativeColor: negativeColor}
}

// Generate builds a workbook with the same rows as the report image.
func (g *XSLSXGenerator) Generate(ctx context.Context, table model.ReportTable) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(table.Rows) == 0 {
		return nil, "", errors.New("empty report table")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", err
	}

	if err := g.fillSheet(f, table); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(f *excelize.File, table model.ReportTable) error {
	lastCol, _ := excelize.ColumnNumberToName(len(headers))

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return err
	}
	_ = f.SetCellStr(sheetName, "A1", table.Title)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#f5f5f5"},
		},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellStr(sheetName, cell, h)
	}
	if err := f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, row := range table.Rows {
		r := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", r), row.Name)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", r), row.Code)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", r), row.Price)
		if err := f.SetCellRichText(sheetName, fmt.Sprintf("D%d", r), g.changeRuns(row.IndexChange, row.StockChange)); err != nil {
			return fmt.Errorf("change cell: %w", err)
		}
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", r), row.NetBuyQty)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", r), row.NetBuyAmount)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", lastCol, 14)
	_ = f.SetColWidth(sheetName, "D", "D", 20)

	return nil
}

// changeRuns renders "index / stock" in one cell, each part in its own direction colour.
func (g *XSLSXGenerator) changeRuns(index, stock model.PctCell) []excelize.RichTextRun {
	return []excelize.RichTextRun{
		{Text: index.Text, Font: g.directionFont(index.Direction)},
		{Text: " / "},
		{Text: stock.Text, Font: g.directionFont(stock.Direction)},
	}
}

func (g *XSLSXGenerator) directionFont(dir model.Direction) *excelize.Font {
	color := ""
	switch dir {
	case model.Positive:
		color = g.positiveColor
	case model.Negative:
		color = g.negativeColor
	}
	if color == "" {
		return nil
	}
	return &excelize.Font{Color: color}
}
