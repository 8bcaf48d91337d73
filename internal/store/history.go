package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/sim"
)

type HistoryStore struct {
	db *pgxpool.Pool
}

func NewHistoryStore(db *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records one completed round. Rows are append-only; replays of
// the same (game, round) overwrite, which makes the write idempotent
// under retried persistence.
func (s *HistoryStore) Append(ctx context.Context, gameID string, e sim.RoundHistoryEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO round_history (
			game_id, round, cash, portfolio_ebitda, net_worth,
			fcf, tax, debt_service, event_type,
			deals_acquired, acquisition_spend, shortfall, leverage
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (game_id, round) DO UPDATE SET
			cash = EXCLUDED.cash,
			portfolio_ebitda = EXCLUDED.portfolio_ebitda,
			net_worth = EXCLUDED.net_worth,
			fcf = EXCLUDED.fcf,
			tax = EXCLUDED.tax,
			debt_service = EXCLUDED.debt_service,
			event_type = EXCLUDED.event_type,
			deals_acquired = EXCLUDED.deals_acquired,
			acquisition_spend = EXCLUDED.acquisition_spend,
			shortfall = EXCLUDED.shortfall,
			leverage = EXCLUDED.leverage
	`, gameID, e.Round, e.Cash, e.PortfolioEBITDA, e.NetWorth,
		e.FCF, e.Tax, e.DebtService, e.EventType,
		e.DealsAcquired, e.AcquisitionSpend, e.Shortfall, e.Leverage)
	return err
}

// ForGame returns a game's rounds in play order.
func (s *HistoryStore) ForGame(ctx context.Context, gameID string) ([]sim.RoundHistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT round, cash, portfolio_ebitda, net_worth,
		       fcf, tax, debt_service, event_type,
		       deals_acquired, acquisition_spend, shortfall, leverage
		FROM round_history WHERE game_id = $1
		ORDER BY round ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.RoundHistoryEntry
	for rows.Next() {
		var e sim.RoundHistoryEntry
		if err := rows.Scan(
			&e.Round, &e.Cash, &e.PortfolioEBITDA, &e.NetWorth,
			&e.FCF, &e.Tax, &e.DebtService, &e.EventType,
			&e.DealsAcquired, &e.AcquisitionSpend, &e.Shortfall, &e.Leverage,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
