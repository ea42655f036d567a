package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/config"
	"github.com/rajsir217-oss/profiledata-gateway/internal/infra/httpclient"
	s3infra "github.com/rajsir217-oss/profiledata-gateway/internal/infra/s3"
	pgrepo "github.com/rajsir217-oss/profiledata-gateway/internal/repo/postgres"
	redrepo "github.com/rajsir217-oss/profiledata-gateway/internal/repo/redis"
	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	criteriasvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	listsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/lists"
	mediasvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/media"
	piisvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/pii"
	profilesvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/profiles"
	savedsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/savedsearch"
	searchsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
	sessionsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/sessionstate"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.CORS, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	snapshotRepo := redrepo.NewSnapshotRepo(redisClient, cfg.Search.SnapshotTTL)
	profileCacheRepo := redrepo.NewProfileCacheRepo(redisClient, cfg.Search.ProfileTTL)
	savedSearchRepo := pgrepo.NewSavedSearchRepo(pool)
	piiRepo := pgrepo.NewPIIRepo(pool)
	listRepo := pgrepo.NewListRepo(pool)

	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, httpclient.New(cfg.Upstream.Timeout))

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, upstreamClient, cfg.Auth.RefreshTTL)

	builder := criteriasvc.NewBuilder(criteriasvc.Config{
		AgeClampMin: cfg.Search.AgeClampMin,
		AgeClampMax: cfg.Search.AgeClampMax,
	})

	searchService := searchsvc.NewService(searchsvc.Config{
		PageSize:    cfg.Search.PageSize,
		MaxPageSize: cfg.Search.MaxPageSize,
	}, builder, upstreamClient, log)

	sessionService := sessionsvc.NewService(sessionsvc.Config{
		SnapshotTTL:  cfg.Search.SnapshotTTL,
		SaveDebounce: cfg.Search.SaveDebounce,
	}, snapshotRepo, searchService, log)

	savedSearchService := savedsvc.NewService(savedSearchRepo, builder)

	piiService := piisvc.NewService(piiRepo)
	if s3Client != nil {
		piiService.AttachPresigner(mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket, cfg.Search.PhotoURLTTL))
	}

	listService := listsvc.NewService(listRepo)
	listService.AttachLiveExcluder(searchService)
	searchService.AttachExclusions(listService)

	profileService := profilesvc.NewService(upstreamClient, log)
	profileService.AttachCache(profileCacheRepo)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		SearchService:      searchService,
		SessionService:     sessionService,
		SavedSearchService: savedSearchService,
		PIIService:         piiService,
		ListService:        listService,
		ProfileService:     profileService,
		CriteriaBuilder:    builder,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
