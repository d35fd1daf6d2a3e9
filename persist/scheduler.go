package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/IvanBrykalov/ttlcache/logging"
)

// Snapshotter produces the JSON object to persist; cache.Cache satisfies it.
type Snapshotter interface {
	MarshalJSON() ([]byte, error)
}

// Scheduler saves a Snapshotter to a file on a cron schedule.
//
// Specs use the robfig/cron syntax with an optional seconds field, plus
// descriptors such as "@every 30s" or "@hourly".
type Scheduler struct {
	cron *cron.Cron
	path string
	src  Snapshotter
	log  logging.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger reports save failures and successes to l.
func WithLogger(l logging.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = logging.OrNop(l) }
}

// NewScheduler validates spec and prepares a stopped Scheduler.
func NewScheduler(spec, path string, src Snapshotter, opts ...SchedulerOption) (*Scheduler, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s := &Scheduler{
		cron: cron.New(cron.WithParser(parser)),
		path: path,
		src:  src,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("persist: schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule. Calling it again has no effect.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule, waits for a running save (bounded by ctx), then
// writes one final snapshot.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.SaveNow()
}

// SaveNow writes a snapshot immediately.
func (s *Scheduler) SaveNow() error {
	data, err := s.src.MarshalJSON()
	if err != nil {
		return fmt.Errorf("persist: snapshot: %w", err)
	}
	if err := Save(s.path, json.RawMessage(data)); err != nil {
		return err
	}
	s.log.Log("snapshot saved", "path", s.path, "bytes", len(data))
	return nil
}

func (s *Scheduler) run() {
	if err := s.SaveNow(); err != nil {
		s.log.Error("snapshot failed", "path", s.path, "err", err)
	}
}
