package main

import (
	"context"

	"healthtracker/internal/adapter/kafka"
	"healthtracker/internal/adapter/memory"
	"healthtracker/internal/adapter/postgres"
	"healthtracker/internal/config"
	"healthtracker/internal/domain"
)

// repository is the full persistence surface both backends provide.
type repository interface {
	domain.PatientRepository
	domain.HealthRecordRepository
	domain.RiskAssessmentRepository
	domain.ScreeningRepository
	domain.DiabetesMetricRepository
	domain.UserRepository
}

type store struct {
	repo     repository
	sessions domain.SessionRepository
	ping     func(ctx context.Context) error
	close    func()
}

func openStore(cfg *config.Config) (*store, error) {
	if cfg.Store == config.StoreMemory {
		db := memory.New()
		return &store{
			repo:     db,
			sessions: db.NewSessionRepo(),
			close:    func() {},
		}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	return &store{
		repo:     db,
		sessions: postgres.NewSessionRepo(db),
		ping:     db.Ping,
		close:    func() { _ = db.Close() },
	}, nil
}

// Ping implements adapthttp.Pinger. The in-memory store is always up.
func (s *store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func newPublisher(cfg *config.Config) *kafka.Publisher {
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaRiskTopic)
}
