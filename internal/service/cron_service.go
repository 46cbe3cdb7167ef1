package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

const heartbeatInfo = "CRON JOB EXECUTED"

// HeartbeatStore records scheduled-job heartbeat rows
type HeartbeatStore interface {
	Insert(ctx context.Context, info string) (*model.CronLog, error)
}

// CronService backs the scheduled heartbeat endpoint
type CronService struct {
	store  HeartbeatStore
	logger *zap.Logger
}

// NewCronService creates a new cron service
func NewCronService(store HeartbeatStore, logger *zap.Logger) *CronService {
	return &CronService{
		store:  store,
		logger: logger,
	}
}

// RecordHeartbeat writes one heartbeat row
func (s *CronService) RecordHeartbeat(ctx context.Context) error {
	entry, err := s.store.Insert(ctx, heartbeatInfo)
	if err != nil {
		return err
	}

	s.logger.Info("Cron heartbeat recorded",
		zap.Int("id", entry.ID),
		zap.Time("at", entry.CreatedAt))
	return nil
}
