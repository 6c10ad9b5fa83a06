package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/service"
)

// Maintenance runs the periodic housekeeping tasks: currently a daily
// purge of date exceptions whose date has passed, so the exceptions list
// a manager sees stays scoped to the future.
type Maintenance struct {
	availabilitySvc *service.AvailabilityService
	logger          *zap.Logger
	stopChan        chan struct{}
}

func NewMaintenance(availabilitySvc *service.AvailabilityService, logger *zap.Logger) *Maintenance {
	return &Maintenance{
		availabilitySvc: availabilitySvc,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start launches the background tasks.
func (m *Maintenance) Start(ctx context.Context) {
	m.logger.Info("Starting background maintenance")
	go m.runExceptionPurgeTask(ctx)
}

// Stop halts the background tasks.
func (m *Maintenance) Stop() {
	m.logger.Info("Stopping background maintenance")
	close(m.stopChan)
}

func (m *Maintenance) runExceptionPurgeTask(ctx context.Context) {
	// First pass at startup, then daily.
	m.purgeExceptions(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.purgeExceptions(ctx)
		case <-m.stopChan:
			m.logger.Info("Exception purge task stopped")
			return
		case <-ctx.Done():
			m.logger.Info("Exception purge task cancelled")
			return
		}
	}
}

func (m *Maintenance) purgeExceptions(ctx context.Context) {
	purged, err := m.availabilitySvc.PurgeExpiredExceptions(ctx)
	if err != nil {
		m.logger.Error("Failed to purge expired exceptions", zap.Error(err))
		return
	}

	if purged > 0 {
		m.logger.Info("Expired exceptions purged", zap.Int("count", purged))
	}
}
