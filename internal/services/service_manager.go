package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepnest/exam-engine/internal/events"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/validator"
	"gorm.io/gorm"
)

// serviceManager wires all services over shared dependencies
type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	testService      TestService
	sessionService   SessionService
	analyticsService AnalyticsService
}

// NewServiceManager creates the service layer. The publisher may be nil
// when events are disabled; services then skip publishing.
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	sm := &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}

	// Analytics first: the session service records snapshots through it.
	sm.analyticsService = NewAnalyticsService(repo, db, logger)
	sm.testService = NewTestService(repo, db, logger, validator, publisher)
	sm.sessionService = NewSessionService(repo, db, logger, validator, publisher, sm.analyticsService)

	logger.Info("Service manager initialized")

	return sm
}

func (sm *serviceManager) Test() TestService {
	return sm.testService
}

func (sm *serviceManager) Session() SessionService {
	return sm.sessionService
}

func (sm *serviceManager) Analytics() AnalyticsService {
	return sm.analyticsService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	return sm.repo.Close()
}
