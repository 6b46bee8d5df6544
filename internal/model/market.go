package model

type Market string

const (
	MarketKospi   Market = "KOSPI"
	MarketKosdaq  Market = "KOSDAQ"
	MarketUnknown Market = "UNKNOWN"
)

// IndexCode is the KIS sector index code of the market's composite index.
func (m Market) IndexCode() (string, bool) {
	switch m {
	case MarketKospi:
		return "0001", true
	case MarketKosdaq:
		return "1001", true
	default:
		return "", false
	}
}

// MarketFromKisID maps mket_id_cd of search-stock-info to a market.
func MarketFromKisID(id string) Market {
	switch id {
	case "STK":
		return MarketKospi
	case "KSQ":
		return MarketKosdaq
	default:
		return MarketUnknown
	}
}

type Period string

const (
	PeriodDaily   Period = "D"
	PeriodWeekly  Period = "W"
	PeriodMonthly Period = "M"
)
