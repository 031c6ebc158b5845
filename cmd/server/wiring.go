package main

import (
	"context"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/config"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/database"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/events"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/middleware"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/objectstore"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/repository"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/resilience"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// store is what both repository drivers provide.
type store interface {
	services.ComplaintStore
	services.ActivityStore
	services.AnalyticsStore
	Ping(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (store, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		s := repository.NewMongoStore(db, cfg.DBTimeout)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Infow("Connected to MongoDB", "uri", database.RedactURI(cfg.MongoURI), "db", cfg.MongoDB)
		return s, func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		db := database.OpenSQL(pool)
		s := repository.NewPostgresStore(db, cfg.DBTimeout)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return s, func() {
			_ = db.Close()
			pool.Close()
		}, nil
	}
}

func openObjectStore(ctx context.Context, cfg *config.Config, executor *resilience.Executor, logger *zap.SugaredLogger) (services.ObjectStore, error) {
	switch cfg.StorageProvider {
	case "cloudinary":
		s, err := objectstore.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder, cfg.StorageTimeout, executor, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Region:        cfg.Region,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Bucket:        cfg.BucketName,
			PublicBaseURL: cfg.S3PublicBaseURL,
			Timeout:       cfg.StorageTimeout,
		}, executor, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// openEvents returns a nil publisher when NATS is not configured.
func openEvents(cfg *config.Config, executor *resilience.Executor, logger *zap.SugaredLogger) (services.EventPublisher, func()) {
	if cfg.NATSURL == "" {
		return nil, func() {}
	}
	pub, err := events.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, executor, logger)
	if err != nil {
		logger.Warnw("Events disabled", "error", err)
		return nil, func() {}
	}
	logger.Infow("Publishing complaint events", "prefix", cfg.NATSSubjectPrefix)
	return pub, pub.Close
}

// newLimiter prefers a shared Redis window and falls back to a per-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) middleware.Limiter {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warnw("Invalid REDIS_URL, using in-process rate limiting", "error", err)
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			err := client.Ping(pingCtx).Err()
			if err == nil {
				logger.Info("Using Redis rate limiter")
				return middleware.NewRedisLimiter(client, cfg.RateLimitRPM)
			}
			logger.Warnw("Redis unavailable, using in-process rate limiting", "error", err)
			_ = client.Close()
		}
	}

	local := middleware.NewLocalLimiter(cfg.RateLimitRPM)
	go local.Cleanup(ctx, time.Minute, 10*time.Minute)
	return local
}
