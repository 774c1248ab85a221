package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"txdash/internal/events"
	applog "txdash/internal/log"
	"txdash/internal/metrics"
	"txdash/internal/repos"
	"txdash/internal/seed"
)

const DefaultSeedTimeout = time.Minute

type SeedResult struct {
	RunID   string
	Records int
}

// SeedService replaces the store contents with the remote seed document.
// Overlapping calls share one run.
type SeedService struct {
	Store      repos.RecordStore
	Source     seed.Source
	SourceName string
	Events     events.Publisher
	Metrics    *metrics.Metrics
	Timeout    time.Duration

	group singleflight.Group
}

func NewSeedService(store repos.RecordStore, src seed.Source, sourceName string, pub events.Publisher, m *metrics.Metrics) *SeedService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &SeedService{Store: store, Source: src, SourceName: sourceName, Events: pub, Metrics: m}
}

// Initialize runs a seed, or joins the one in flight. The shared run is
// detached from any single caller and bounded by Timeout; each caller
// stops waiting when its own ctx ends.
func (s *SeedService) Initialize(ctx context.Context) (SeedResult, error) {
	ch := s.group.DoChan("seed", func() (any, error) {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = DefaultSeedTimeout
		}
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return s.run(runCtx)
	})
	select {
	case <-ctx.Done():
		return SeedResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return SeedResult{}, res.Err
		}
		return res.Val.(SeedResult), nil
	}
}

func (s *SeedService) run(ctx context.Context) (SeedResult, error) {
	items, err := s.Source.Fetch(ctx)
	if err != nil {
		s.Metrics.SeedFailed()
		return SeedResult{}, fmt.Errorf("fetch seed: %w", err)
	}
	recs, err := seed.Records(items)
	if err != nil {
		s.Metrics.SeedFailed()
		return SeedResult{}, fmt.Errorf("map seed: %w", err)
	}
	if err := s.Store.ReplaceAll(ctx, recs); err != nil {
		s.Metrics.SeedFailed()
		return SeedResult{}, fmt.Errorf("replace records: %w", err)
	}

	res := SeedResult{RunID: uuid.NewString(), Records: len(recs)}
	s.Metrics.SeedOK(res.Records)

	ev := events.Seeded{RunID: res.RunID, Source: s.SourceName, Records: res.Records}
	if err := s.Events.PublishSeeded(ctx, ev); err != nil {
		applog.L().Warn("seed.event.fail", zap.String("run_id", res.RunID), zap.Error(err))
	}
	return res, nil
}
