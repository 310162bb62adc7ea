// Package jobs runs the periodic maintenance of engagement counters.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SoldSource totals sold quantities per product since a point in time.
type SoldSource interface {
	SoldSince(ctx context.Context, since time.Time) (map[primitive.ObjectID]int, error)
}

// SoldSink overwrites the per-product 24h counters.
type SoldSink interface {
	SetSoldLast24h(ctx context.Context, counts map[primitive.ObjectID]int) error
}

type Scheduler struct {
	cron    *cron.Cron
	orders  SoldSource
	catalog SoldSink
	logger  *slog.Logger
	now     func() time.Time
}

func NewScheduler(orders SoldSource, catalog SoldSink, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		orders:  orders,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules the sold-counter recompute on spec (robfig/cron syntax) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RecomputeSoldLast24h(ctx); err != nil {
			s.logger.Error("recompute sold counters", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RecomputeSoldLast24h rebuilds every product's soldLast24h from orders of the last day.
func (s *Scheduler) RecomputeSoldLast24h(ctx context.Context) error {
	counts, err := s.orders.SoldSince(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	if err := s.catalog.SetSoldLast24h(ctx, counts); err != nil {
		return err
	}
	s.logger.Info("sold counters recomputed", slog.Int("products", len(counts)))
	return nil
}
