package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RankingEntry struct {
	Code              string
	Name              string
	Price             decimal.Decimal
	PrevDayChangeRate decimal.Decimal
	NetBuyQty         int64
	// millions of KRW
	NetBuyAmount decimal.Decimal
}

type NullInt64 struct {
	Int64 int64
	Valid bool
}

type PriceBar struct {
	Date   time.Time
	Open   decimal.NullDecimal
	High   decimal.NullDecimal
	Low    decimal.NullDecimal
	Close  decimal.NullDecimal
	Volume NullInt64
}

type IndexBar struct {
	Date   time.Time
	Close  decimal.NullDecimal
	Open   decimal.NullDecimal
	High   decimal.NullDecimal
	Low    decimal.NullDecimal
	Volume NullInt64
}

// IndexSeries holds bars ordered newest first.
type IndexSeries struct {
	Market Market
	Period Period
	Bars   []IndexBar
}

type StockInfo struct {
	Code   string
	Name   string
	Market Market
}

type HistoryKind int

const (
	HistoryFound HistoryKind = iota
	HistoryFallback
)

// HistoryResult is the outcome of comparing an entry with its reference date close.
type HistoryResult struct {
	Kind      HistoryKind
	Close     decimal.Decimal
	ChangePct decimal.Decimal
	Reason    error
}

type EnrichedEntry struct {
	RankingEntry
	History         HistoryResult
	HistoricalPrice decimal.Decimal
	ChangePct       decimal.Decimal
	Market          Market
	IndexChangePct  decimal.Decimal
}
