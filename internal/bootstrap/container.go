package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
	"github.com/mohammadpnp/outreach-import/internal/config"
	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db"
	infrafile "github.com/mohammadpnp/outreach-import/internal/infrastructure/file"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/lock"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/tabular"
)

// Container holds the wired use cases shared by the HTTP server and the CLI.
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Logger *logrus.Logger

	StartImport app.StartOutreachImport
	Advance     app.AdvanceImportJob
	GetJob      app.GetImportJob
	ListItems   app.ListImportJobItems
	Runner      *app.Runner
}

func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	gdb, pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, DB: gdb, Pool: pool, Logger: logger}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			c.Close()
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		c.Redis = redis.NewClient(opts)
	}

	source, err := newSource(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	jobs := repository.NewImportJobRepository(gdb)
	items := repository.NewImportJobItemRepository(gdb)

	c.StartImport = app.NewStartOutreachImport(jobs)
	c.GetJob = app.NewGetImportJob(jobs)
	c.ListItems = app.NewListImportJobItems(jobs, items)
	c.Advance = app.NewAdvanceImportJob(app.AdvancerDeps{
		Jobs:         jobs,
		Slices:       repository.NewImportJobItemBulkRepository(pool),
		Items:        items,
		Invitations:  repository.NewInvitationRepository(gdb),
		Institutions: repository.NewInstitutionRepository(gdb),
		Locker:       c.newLocker(cfg),
		Source:       source,
		Parser:       tabular.NewParser(),
	}, app.AdvancerConfig{
		ChunkSize:       cfg.Import.ChunkSize,
		ImportBatchSize: cfg.Import.BatchSize,
		InviteRole:      cfg.Import.InviteRole,
		InviteTTL:       cfg.Import.InviteTTL,
		Logger:          logger.WithField("component", "advance"),
	})
	c.Runner = app.NewRunner(c.Advance, app.RunnerConfig{
		Workers:   cfg.Import.Workers,
		QueueSize: cfg.Import.QueueSize,
		Logger:    logger.WithField("component", "runner"),
	})

	return c, nil
}

func newSource(cfg *config.Config) (app.ImportSource, error) {
	if cfg.Import.Source == config.SourceS3 {
		return infrafile.NewS3Source(infrafile.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			KeyPrefix: cfg.S3.KeyPrefix,
		})
	}
	return infrafile.NewLocalSource(cfg.Import.BaseDir), nil
}

// newLocker returns nil for the memory backend; the advancer then falls back
// to an in-process lock.
func (c *Container) newLocker(cfg *config.Config) domain.JobLocker {
	log := c.Logger.WithField("component", "lock")
	switch cfg.Import.LockBackend {
	case config.LockRedis:
		return lock.NewRedisJobLocker(c.Redis, "outreach-import", cfg.Import.LockTTL, log)
	case config.LockMemory:
		return nil
	default:
		return lock.NewPostgresJobLocker(c.Pool, log)
	}
}

func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
