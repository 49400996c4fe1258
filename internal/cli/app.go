package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swim-admin/config"
	"swim-admin/internal/repository"
	"swim-admin/internal/service"
	"swim-admin/internal/store"
	"swim-admin/pkg/database"
	"swim-admin/pkg/events"
	"swim-admin/pkg/jwt"
	applogger "swim-admin/pkg/logger"
	"swim-admin/pkg/password"
	"swim-admin/pkg/redis"
)

// app 各子命令共享的运行时依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	events events.Publisher
	store  *store.Store
	jwt    *jwt.Manager
	svc    *service.Service
}

func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

// bootstrap 按配置依次连接数据库、Redis、NATS，并组装 Store 与 Service。
// 数据库不可用时以演示模式运行；Redis、NATS 不可用时相应功能降级。
func bootstrap(ctx context.Context) (*app, error) {
	cfg, logger, err := loadBase()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	// 1. 数据库（可选）
	var repo *repository.Repository
	if cfg.Database.Enabled {
		db, err := database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Warn("数据库连接失败，以演示模式运行", zap.Error(err))
		} else if err := migrateUp(db, logger); err != nil {
			logger.Warn("数据库迁移失败，以演示模式运行", zap.Error(err))
			closeDB(db)
		} else {
			a.db = db
			repo = repository.NewRepository(db)
		}
	}

	// 2. Redis（可选）
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单与限流不可用", zap.Error(err))
		} else {
			a.rdb = rdb
		}
	}

	// 3. 事件总线（可选）
	a.events = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		pub, err := events.NewNatsPublisher(cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("NATS 连接失败，事件将不会发布", zap.Error(err))
		} else {
			a.events = pub
		}
	}

	// 4. Store → Service
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	a.store = store.New(repo, hasher, logger, store.WithUserBootstrap(cfg.Database.BootstrapUsers))
	if err := a.store.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("加载数据失败: %w", err)
	}
	if a.store.IsDemoMode() {
		logger.Warn("当前为演示模式，所有变更仅保存在内存中")
	}

	a.jwt = jwt.NewManager(&cfg.Auth)
	deps := service.Deps{
		Config: cfg,
		Store:  a.store,
		JWT:    a.jwt,
		Hasher: hasher,
		Events: a.events,
		Logger: logger,
	}
	// nil 指针不能直接作为接口传入
	if a.rdb != nil {
		deps.Blacklist = a.rdb
		deps.Locker = a.rdb
	}
	a.svc = service.NewService(deps)
	return a, nil
}

func migrateUp(db *gorm.DB, logger *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return database.RunMigrations(sqlDB, logger)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// close 释放外部连接
func (a *app) close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		closeDB(a.db)
	}
	a.logger.Sync()
}
