package reportService

import (
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

// MarketMembership answers which market a stock code is listed on. It is built once per run and never modified.
type MarketMembership struct {
	kospi  map[string]struct{}
	kosdaq map[string]struct{}
}

func NewMarketMembership(kospi, kosdaq []string) MarketMembership {
	m := MarketMembership{
		kospi:  make(map[string]struct{}, len(kospi)),
		kosdaq: make(map[string]struct{}, len(kosdaq)),
	}
	for _, code := range kospi {
		m.kospi[code] = struct{}{}
	}
	for _, code := range kosdaq {
		m.kosdaq[code] = struct{}{}
	}
	return m
}

func (m MarketMembership) Resolve(code string) model.Market {
	if _, ok := m.kospi[code]; ok {
		return model.MarketKospi
	}
	if _, ok := m.kosdaq[code]; ok {
		return model.MarketKosdaq
	}
	return model.MarketUnknown
}

func (m MarketMembership) Len() int {
	return len(m.kospi) + len(m.kosdaq)
}

// ClassifyMarkets attaches market and market index change to a copy of entries.
func ClassifyMarkets(entries []model.EnrichedEntry, membership MarketMembership, indexChanges map[model.Market]decimal.Decimal) []model.EnrichedEntry {
	res := make([]model.EnrichedEntry, len(entries))
	for i, entry := range entries {
		entry.Market = membership.Resolve(entry.Code)
		entry.IndexChangePct = decimal.Zero
		if entry.Market != model.MarketUnknown {
			if change, ok := indexChanges[entry.Market]; ok {
				entry.IndexChangePct = change
			}
		}
		res[i] = entry
	}
	return res
}
