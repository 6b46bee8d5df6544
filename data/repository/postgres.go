package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/dbModel"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
)

type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// UpsertStockMarkets stores the market membership of the given stocks, replacing older rows.
func (p *Postgres) UpsertStockMarkets(ctx context.Context, stocks []model.StockInfo) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	if len(stocks) == 0 {
		return nil
	}

	slog.Debug("UpsertStockMarkets start", slog.String("rqID", rqID), slog.Int("stocks", len(stocks)))
	defer func() {
		if err != nil {
			slog.Error("UpsertStockMarkets failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertStockMarkets completed", slog.String("rqID", rqID))
		}
	}()

	sb := strings.Builder{}
	args := make([]any, 0, len(stocks)*3)

	sb.WriteString(`INSERT INTO stock_markets (code, name, market) VALUES `)

	for i, stock := range stocks {
		args = append(args, stock.Code, stock.Name, string(stock.Market))

		start := i*3 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d)", start, start+1, start+2))

		if i < len(stocks)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(`
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			market = EXCLUDED.market,
			dt_update = now()`)

	_, err = p.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (p *Postgres) GetMarketCodes(ctx context.Context, market model.Market) (codes []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT code FROM stock_markets WHERE market = $1 ORDER BY code`

	slog.Debug("GetMarketCodes start", slog.String("rqID", rqID), slog.String("market", string(market)))
	defer func() {
		if err != nil {
			slog.Error("GetMarketCodes failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetMarketCodes completed", slog.String("rqID", rqID), slog.Int("codes", len(codes)))
		}
	}()

	err = p.db.SelectContext(ctx, &codes, query, string(market))
	if err != nil {
		return nil, err
	}

	return codes, nil
}

// GetStockMarkets returns the stored rows for codes; codes without a row are simply absent.
func (p *Postgres) GetStockMarkets(ctx context.Context, codes []string) (stocks []model.StockInfo, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	if len(codes) == 0 {
		return nil, nil
	}

	slog.Debug("GetStockMarkets start", slog.String("rqID", rqID), slog.Int("codes", len(codes)))
	defer func() {
		if err != nil {
			slog.Error("GetStockMarkets failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStockMarkets completed", slog.String("rqID", rqID))
		}
	}()

	query, args, err := sqlx.In(`SELECT code, name, market, dt_update FROM stock_markets WHERE code IN (?)`, codes)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryxContext(ctx, p.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row dbModel.StockMarket
		if err = rows.StructScan(&row); err != nil {
			return nil, err
		}
		stocks = append(stocks, model.StockInfo{Code: row.Code, Name: row.Name, Market: model.Market(row.Market)})
	}

	return stocks, rows.Err()
}
