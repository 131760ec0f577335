// Package bootstrap assembles controllers from configuration. It is shared by
// the HTTP server and the outreach CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/fadilmartias/cv-screener/internal/roster"
	"github.com/fadilmartias/cv-screener/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("postgres status store selected but no database connection")

// ConnectDB opens Postgres and migrates the status and roster tables.
func ConnectDB(dbConfig *config.DBConfig, appConfig *config.AppConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.KeyValue{}, &model.CandidateRecord{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStatusStore picks the KeyValueStore named by STATUS_STORE. db is only
// needed for the postgres store.
func OpenStatusStore(cfg *config.CampaignConfig, db *gorm.DB) (repository.KeyValueStore, io.Closer, error) {
	switch cfg.StatusStore {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nopCloser{}, nil
	case config.StoreSQLite:
		store, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StorePostgres:
		if db == nil {
			return nil, nil, ErrNoDatabase
		}
		return repository.NewKeyValueRepository(db), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown status store %q", cfg.StatusStore)
}

// NewExtractor returns the remote screener or the in-process matcher.
func NewExtractor(cfg *config.ScreenerConfig, screener *service.ScreenerService) (service.SkillExtractor, error) {
	switch cfg.ExtractorBackend {
	case config.BackendRemote:
		return screener, nil
	case config.BackendLocal:
		return service.NewLocalSkillExtractor(nil), nil
	}
	return nil, fmt.Errorf("unknown extractor backend %q", cfg.ExtractorBackend)
}

// NewAnalyzer returns the remote screener or a Gemini-backed analyzer.
func NewAnalyzer(ctx context.Context, cfg *config.ScreenerConfig, geminiConfig *config.GeminiConfig, screener *service.ScreenerService, log *zap.Logger) (service.FitAnalyzer, error) {
	switch cfg.AnalyzerBackend {
	case config.BackendRemote:
		return screener, nil
	case config.BackendGemini:
		gemini, err := service.NewGeminiService(ctx, geminiConfig, log)
		if err != nil {
			return nil, err
		}
		return service.NewGeminiAnalyzer(gemini, geminiConfig.Model), nil
	}
	return nil, fmt.Errorf("unknown analyzer backend %q", cfg.AnalyzerBackend)
}

// RosterSource is the part of the candidate repository the loader needs.
type RosterSource interface {
	GetCandidates(ctx context.Context) ([]model.Candidate, error)
	UpsertCandidates(ctx context.Context, roster []model.Candidate) error
}

// LoadRoster reads ROSTER_FILE when set, importing it into source if one is
// given; otherwise the roster comes from source. With neither the roster is
// empty.
func LoadRoster(ctx context.Context, cfg *config.CampaignConfig, source RosterSource) ([]model.Candidate, error) {
	if cfg.RosterFile != "" {
		candidates, err := roster.Load(cfg.RosterFile)
		if err != nil {
			return nil, err
		}
		if source != nil {
			if err := source.UpsertCandidates(ctx, candidates); err != nil {
				return nil, fmt.Errorf("import roster: %w", err)
			}
		}
		return candidates, nil
	}
	if source == nil {
		return []model.Candidate{}, nil
	}
	candidates, err := source.GetCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return candidates, nil
}
