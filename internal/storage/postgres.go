package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StorePosition inserts a newly opened position.
func (p *PostgresStorage) StorePosition(ctx context.Context, pos *portfolio.Position) error {
	query := `
		INSERT INTO positions (
			id, market_id, token_id, question, side, shares, entry_price,
			capital_allocated, stop_loss, take_profit, confidence,
			status, opened_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		pos.ID,
		pos.MarketID,
		pos.TokenID,
		pos.Question,
		string(pos.Side),
		pos.Shares,
		pos.EntryPrice,
		pos.CapitalAllocated,
		pos.StopLoss,
		pos.TakeProfit,
		pos.Confidence,
		string(pos.Status),
		pos.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}

	p.logger.Debug("position-stored",
		zap.String("position-id", pos.ID),
		zap.String("market-id", pos.MarketID))

	return nil
}

// UpdatePosition records the terminal state of a closed position.
func (p *PostgresStorage) UpdatePosition(ctx context.Context, pos *portfolio.Position) error {
	query := `
		UPDATE positions
		SET status = $2, exit_price = $3, realized_pnl = $4, closed_at = $5
		WHERE id = $1
	`

	res, err := p.db.ExecContext(ctx, query,
		pos.ID,
		string(pos.Status),
		pos.CurrentPrice,
		pos.RealizedPnL,
		pos.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}

	if rows, rerr := res.RowsAffected(); rerr == nil && rows == 0 {
		return fmt.Errorf("position %s not found", pos.ID)
	}

	p.logger.Debug("position-updated",
		zap.String("position-id", pos.ID),
		zap.String("status", string(pos.Status)),
		zap.Float64("realized-pnl", pos.RealizedPnL))

	return nil
}

// StoreCycle inserts a cycle summary row.
func (p *PostgresStorage) StoreCycle(ctx context.Context, rec *CycleRecord) error {
	query := `
		INSERT INTO cycles (
			id, started_at, duration_ms, markets_scanned, candidates_ranked,
			signals_accepted, positions_opened, positions_closed,
			equity, available_capital, drawdown
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.StartedAt,
		rec.Duration.Milliseconds(),
		rec.MarketsScanned,
		rec.CandidatesRanked,
		rec.SignalsAccepted,
		rec.PositionsOpened,
		rec.PositionsClosed,
		rec.Equity,
		rec.AvailableCapital,
		rec.Drawdown,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	p.logger.Debug("cycle-stored",
		zap.String("cycle-id", rec.ID),
		zap.Int("positions-opened", rec.PositionsOpened))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
