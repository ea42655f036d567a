package notifierapp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/config"
	"github.com/rajsir217-oss/profiledata-gateway/internal/infra/amqp"
	"github.com/rajsir217-oss/profiledata-gateway/internal/infra/httpclient"
	"github.com/rajsir217-oss/profiledata-gateway/internal/jobs/notifier"
	pgrepo "github.com/rajsir217-oss/profiledata-gateway/internal/repo/postgres"
	criteriasvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

// App runs the saved-search match notifier on an interval. Unlike the
// api app it refuses to start degraded: without postgres or the broker
// there is nothing useful for it to do.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	postgres  *pgxpool.Pool
	publisher *amqp.Publisher
	job       *notifier.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for notifier app: %w", err)
	}

	publisher, err := amqp.NewPublisher(cfg.AMQP.URI, cfg.AMQP.Exchange, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init amqp publisher: %w", err)
	}

	savedSearchRepo := pgrepo.NewSavedSearchRepo(pool)
	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, httpclient.New(cfg.Upstream.Timeout))
	builder := criteriasvc.NewBuilder(criteriasvc.Config{
		AgeClampMin: cfg.Search.AgeClampMin,
		AgeClampMax: cfg.Search.AgeClampMax,
	})

	job := notifier.New(savedSearchRepo, upstreamClient, builder, publisher, cfg.Notifier.Lookback, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		postgres:  pool,
		publisher: publisher,
		job:       job,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	interval := a.cfg.Notifier.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	a.logger.Info("notifier app started", zap.Duration("interval", interval))

	if err := a.job.Run(ctx); err != nil {
		a.logger.Warn("notifier run failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("notifier app stopped")
			return nil
		case <-ticker.C:
			if err := a.job.Run(ctx); err != nil {
				a.logger.Warn("notifier run failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
}
