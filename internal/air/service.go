package air

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service orchestrates fetching readings from the source, classifying them and
// serving snapshots from the store.
type Service struct {
	store  Store
	source Source
	log    *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, source Source, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		source: source,
		log:    log.With("component", "air.service"),
	}
}

// BuildSnapshot classifies every reading, attaches its advisory and summarizes
// the set. It fails on the first unsupported pollutant rather than dropping it.
func BuildSnapshot(q AreaQuery, source string, readings []Reading) (AreaSnapshot, error) {
	classified := make([]ClassifiedReading, 0, len(readings))
	for _, r := range readings {
		band, err := Classify(r.Pollutant, r.Value)
		if err != nil {
			return AreaSnapshot{}, err
		}
		advice, err := Advisory(r.Pollutant, band)
		if err != nil {
			return AreaSnapshot{}, err
		}
		classified = append(classified, ClassifiedReading{
			Reading:  r,
			Band:     band,
			Advisory: advice,
		})
	}

	summary, err := Summarize(readings)
	if err != nil {
		return AreaSnapshot{}, err
	}

	return AreaSnapshot{
		Area:      q,
		FetchedAt: time.Now().UTC(),
		Source:    source,
		Readings:  classified,
		Summary:   summary,
	}, nil
}

// FetchArea performs a live fetch for the requested area and returns the
// classified snapshot. An area with no stations is not an error: the snapshot
// comes back with zero readings and nil stats, and the caller renders an empty
// state.
func (s *Service) FetchArea(ctx context.Context, q AreaQuery) (AreaSnapshot, error) {
	if s.source == nil {
		return AreaSnapshot{}, fmt.Errorf("no air quality source configured")
	}

	readings, err := s.source.FetchArea(ctx, q)
	if err != nil {
		return AreaSnapshot{}, fmt.Errorf("fetch %s: %w", q.Key(), err)
	}
	s.log.Debug("area fetched", "area", q.Key(), "readings", len(readings))

	return BuildSnapshot(q, s.source.Name(), readings)
}

// RefreshArea fetches the area and stores the resulting snapshot. When the
// fetch yields no readings the last good snapshot is kept instead of being
// overwritten with an empty one.
func (s *Service) RefreshArea(ctx context.Context, q AreaQuery) error {
	snapshot, err := s.FetchArea(ctx, q)
	if err != nil {
		return err
	}

	if snapshot.Summary.Count == 0 {
		s.log.Warn("empty refresh; keeping last good snapshot", "area", q.Key())
		return nil
	}

	s.store.SaveSnapshot(q, snapshot)
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(q AreaQuery) (AreaSnapshot, error) {
	return s.store.GetLatest(q)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(q AreaQuery, from, to time.Time) ([]AreaSnapshot, error) {
	return s.store.GetRange(q, from, to)
}
