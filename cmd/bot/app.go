package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/adapters/browser"
	"github.com/jose-valero/tabletop-rooms-bot/internal/adapters/hullqin"
	"github.com/jose-valero/tabletop-rooms-bot/internal/app/service"
	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/config"
	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/storage"
)

// app junta todo lo que comparten serve y los subcomandos de CLI.
type app struct {
	log     *zap.Logger
	db      *sql.DB
	browser *browser.Manager

	catalog *service.CatalogService
	rooms   *service.RoomsService
	store   *storage.RoomStore
}

type backend interface {
	storage.GroupBackend
	storage.CatalogBackend
}

func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (backend, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("✅ DB lista y migrada")
		return storage.NewPGBackend(db), db, nil
	default:
		fb, err := storage.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("✅ store en archivos", zap.String("dir", cfg.DataDir))
		return fb, nil, nil
	}
}

// newApp arma stores y servicios. El navegador se crea pero no se lanza:
// eso lo hace startBrowser sólo en los comandos que scrapean.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	b, db, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	bm := browser.New(browser.Config{Headless: cfg.BrowserHeadless, Bin: cfg.BrowserBin}, log.Named("browser"))
	scraper := hullqin.New(bm, log.Named("scraper"), hullqin.WithBaseURL(cfg.BaseURL))

	store := storage.NewRoomStore(b, log.Named("store"))
	catalog := service.NewCatalogService(scraper, storage.NewCatalogRepo(b, log.Named("catalog")), log.Named("catalog"))
	rooms := service.NewRoomsService(catalog, scraper, store, service.RoomsConfig{
		RoomTTL:          cfg.RoomTTL,
		OccupancyEnabled: cfg.OccupancyEnabled,
	}, log.Named("rooms"))

	return &app{log: log, db: db, browser: bm, catalog: catalog, rooms: rooms, store: store}, nil
}

func (a *app) startBrowser(ctx context.Context) error {
	if err := a.browser.Start(ctx); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
