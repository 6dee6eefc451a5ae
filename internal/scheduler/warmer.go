package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type narratives interface {
	FetchSalesForecast(ctx context.Context) (*usecase.Result, error)
	FetchChurnPrediction(ctx context.Context) (*usecase.Result, error)
}

// Warmer regenerates both narratives on a cron schedule. The narrative
// generator it drives sits behind the Redis cache, so every run leaves fresh
// entries for the next user request.
type Warmer struct {
	insights narratives
	schedule cron.Schedule
	timeout  time.Duration
	logger   *slog.Logger
}

func NewWarmer(insights narratives, cronExpr string, timeout time.Duration, logger *slog.Logger) (*Warmer, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse warm schedule %q: %w", cronExpr, err)
	}
	return &Warmer{
		insights: insights,
		schedule: sched,
		timeout:  timeout,
		logger:   logger.With("component", "warmer"),
	}, nil
}

// Start warms once immediately, then on every schedule tick until ctx is done.
func (w *Warmer) Start(ctx context.Context) {
	w.logger.Info("warmer started")

	for {
		if err := w.Warm(ctx); err != nil {
			w.logger.Warn("warm run incomplete", "error", err)
		}

		next := w.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("warmer shut down")
			return
		case <-timer.C:
		}
	}
}

// Warm refreshes both narratives concurrently. One failing does not cancel the
// other; the first error is returned after both finish.
func (w *Warmer) Warm(ctx context.Context) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	var g errgroup.Group
	g.Go(func() error { return w.run(ctx, "sales_forecast", w.insights.FetchSalesForecast) })
	g.Go(func() error { return w.run(ctx, "churn_prediction", w.insights.FetchChurnPrediction) })
	return g.Wait()
}

func (w *Warmer) run(ctx context.Context, name string, fetch func(context.Context) (*usecase.Result, error)) error {
	start := time.Now()

	res, err := fetch(ctx)
	if err != nil {
		metrics.WarmRunsTotal.WithLabelValues(name, "error").Inc()
		w.logger.ErrorContext(ctx, "warm narrative", "narrative", name, "error", err)
		return fmt.Errorf("warm %s: %w", name, err)
	}

	outcome := "warmed"
	if !res.Success {
		// No source data; nothing was sent to the model.
		outcome = "empty"
	}
	metrics.WarmRunsTotal.WithLabelValues(name, outcome).Inc()
	w.logger.InfoContext(ctx, "warm narrative", "narrative", name, "outcome", outcome, "duration", time.Since(start))
	return nil
}
