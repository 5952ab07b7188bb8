package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"

	"github.com/fatflowers/sponsorship/internal/models"
	cfgpkg "github.com/fatflowers/sponsorship/pkg/config"
	gormzap "github.com/fatflowers/sponsorship/pkg/gormlog"
)

func dialector(cfg cfgpkg.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case cfgpkg.DBDriverPostgres, "":
		return postgres.Open(cfg.DSN), nil
	case cfgpkg.DBDriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	d, err := dialector(cfg.Database)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: gormzap.New(l, cfg.Env == cfgpkg.EnvDev)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	if cfg.MetricsAddr != "" {
		// pool stats only; collectors land in the default registry served on metrics_addr
		if err := db.Use(gormprom.New(gormprom.Config{
			DBName:          "sponsorship",
			RefreshInterval: 15,
			StartServer:     false,
		})); err != nil {
			l.Warnw("gorm prometheus plugin disabled", "err", err)
		}
	}
	l.Infow("connected to database", "driver", cfg.Database.Driver)
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(Migrate),
	fx.Invoke(registerDBClose),
)

// Migrate applies the embedded SQL migrations on postgres, or gorm
// AutoMigrate when database.auto_migrate is set or the driver is sqlite.
func Migrate(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) error {
	if cfg.Database.AutoMigrate || cfg.Database.Driver == cfgpkg.DBDriverSQLite {
		return AutoMigrate(l, db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		l.Errorf("migrations failed: %v", err)
		return err
	}
	l.Infow("migrations applied")
	return nil
}

// AutoMigrate runs GORM migrations for every model.
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
