package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

// CronLogRepository handles heartbeat rows written by the scheduled endpoint
type CronLogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCronLogRepository creates a new cron log repository
func NewCronLogRepository(db *sqlx.DB, logger *zap.Logger) *CronLogRepository {
	return &CronLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert writes one heartbeat row and returns it as stored
func (r *CronLogRepository) Insert(ctx context.Context, info string) (*model.CronLog, error) {
	query := `INSERT INTO cron_logs (info) VALUES ($1) RETURNING id, info, created_at`

	var entry model.CronLog
	if err := r.db.QueryRowxContext(ctx, query, info).StructScan(&entry); err != nil {
		r.logger.Error("Failed to insert cron log", zap.Error(err))
		return nil, err
	}

	return &entry, nil
}
