package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
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

	err = db.Ping()
	if err != nil {
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

// RecordSettlement inserts one settled bet. Insert only: the journal is
// append-only and nothing reads it back.
func (p *PostgresStorage) RecordSettlement(ctx context.Context, bet *types.Bet) error {
	query := `
		INSERT INTO bet_settlements (
			tx_hash, player, amount, threshold, result,
			payout, potential_payout, lucky_number, is_your_bet,
			placed_at, settled_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	var luckyNumber sql.NullInt64
	if bet.LuckyNumber != nil {
		luckyNumber = sql.NullInt64{Int64: *bet.LuckyNumber, Valid: true}
	}

	_, err := p.db.ExecContext(ctx, query,
		bet.ID,
		bet.Player,
		bet.Amount,
		bet.Threshold,
		string(bet.Result),
		bet.Payout,
		bet.PotentialPayout,
		luckyNumber,
		bet.IsYourBet,
		bet.PlacedAt,
		bet.SettledAt,
	)

	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}

	p.logger.Debug("settlement-stored",
		zap.String("tx-hash", bet.ID),
		zap.String("result", string(bet.Result)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
