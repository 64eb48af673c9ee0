package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shreyainlabcoat/Gotham/internal/air"
)

// Scheduler periodically refreshes the watched areas so the store always has
// a recent snapshot to serve.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *air.Service
	areas     []air.AreaQuery
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(areas []air.AreaQuery, interval time.Duration, service *air.Service, log *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		areas:     areas,
		interval:  interval,
		log:       log.With("component", "scheduler"),
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler. The first run happens immediately so the dashboard has data
// before the first interval elapses.
func (s *Scheduler) Start() error {
	if len(s.areas) == 0 {
		s.log.Info("no watch areas configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(s.refreshAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) refreshAll() {
	s.log.Info("running air quality refresh job", "areas", len(s.areas))

	var wg sync.WaitGroup
	for _, area := range s.areas {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.service.RefreshArea(ctx, area); err != nil {
				s.log.Error("refresh failed", "area", area.Key(), "error", err)
			}
		}()
	}
	wg.Wait()
	s.log.Info("completed air quality refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
