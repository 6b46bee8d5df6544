package dbModel

import (
	"time"
)

type StockMarket struct {
	Code     string    `db:"code"`
	Name     string    `db:"name"`
	Market   string    `db:"market"`
	DtUpdate time.Time `db:"dt_update"`
}
