package model

import "time"

type Direction int

const (
	Neutral Direction = iota
	Positive
	Negative
)

// Class is the css class used for the direction marker, empty for Neutral.
func (d Direction) Class() string {
	switch d {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return ""
	}
}

type PctCell struct {
	Text      string
	Direction Direction
}

type ReportRow struct {
	Name         string
	Code         string
	Price        string
	IndexChange  PctCell
	StockChange  PctCell
	NetBuyQty    string
	NetBuyAmount string
}

type ReportTable struct {
	Title string
	Date  time.Time
	Rows  []ReportRow
}
