package kisApi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

// parseDecimal treats empty or malformed text as a missing value.
func parseDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseInt(s string) model.NullInt64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return model.NullInt64{}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return model.NullInt64{}
	}
	return model.NullInt64{Int64: v, Valid: true}
}

func (a *KisApi) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), a.loc)
}

// text renders a loosely typed json value the way KIS would have sent it as a string.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}
