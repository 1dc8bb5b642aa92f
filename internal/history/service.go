package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffcwolf/klinscore/internal/cache"
	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

var tracer = otel.Tracer("klinscore-history")

// Service runs calculations and records the successful ones.
type Service struct {
	store    *Store
	storage  StorageClient
	cache    cache.Cache
	cacheTTL time.Duration
	engine   *scoring.Engine
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. c may be nil to disable caching; a nil
// logger discards output.
func NewService(store *Store, storage StorageClient, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:    store,
		storage:  storage,
		cache:    c,
		cacheTTL: cacheTTL,
		engine:   scoring.NewEngine(),
		logger:   logger,
		now:      time.Now,
	}
}

// Calculate evaluates def against inputs and stores the record. Calculation
// errors are returned unchanged and nothing is stored.
func (s *Service) Calculate(ctx context.Context, scoreID string, def *scoring.ScoreDefinition, inputs scoring.Inputs) (*Record, error) {
	ctx, span := tracer.Start(ctx, "history.Calculate",
		trace.WithAttributes(attribute.String("score.id", scoreID)),
	)
	defer span.End()

	result, err := s.engine.Calculate(def, inputs)
	if err != nil {
		span.SetStatus(codes.Error, "calculation failed")
		return nil, err
	}

	rec := &Record{
		ID:           uuid.New().String(),
		ScoreID:      scoreID,
		ScoreName:    def.Name,
		ScoreVersion: def.Version,
		Inputs:       inputs,
		Result:       result,
		CreatedAt:    s.now().UTC(),
	}
	span.SetAttributes(attribute.String("record.id", rec.ID), attribute.Int("score.total", result.Total))

	if err := s.save(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return nil, err
	}
	s.logger.Info("calculation recorded", "score_id", scoreID, "record_id", rec.ID, "total", result.Total)
	return rec, nil
}

func (s *Service) save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.storage.PutRecord(ctx, rec.ScoreID, rec.ID, data); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	if err := s.store.Insert(ctx, rec.Summary()); err != nil {
		return err
	}
	s.cachePut(ctx, rec.ID, data)
	return nil
}

// Get returns a stored record, reading through the cache.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := tracer.Start(ctx, "history.Get",
		trace.WithAttributes(attribute.String("record.id", id)),
	)
	defer span.End()

	if data := s.cacheGet(ctx, id); data != nil {
		var rec Record
		if err := json.Unmarshal(data, &rec); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &rec, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "record_id", id)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	sum, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, "index lookup failed")
		}
		return nil, err
	}
	data, err := s.storage.GetRecord(ctx, sum.ScoreID, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	s.cachePut(ctx, id, data)
	return &rec, nil
}

// List returns record summaries newest first.
func (s *Service) List(ctx context.Context, scoreID string, limit int) ([]Summary, error) {
	return s.store.List(ctx, scoreID, limit)
}

func (s *Service) cacheGet(ctx context.Context, id string) []byte {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, "record:"+id)
	if err != nil {
		s.logger.Warn("cache get failed", "record_id", id, "error", err)
		return nil
	}
	return data
}

func (s *Service) cachePut(ctx context.Context, id string, data []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, "record:"+id, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "record_id", id, "error", err)
	}
}
