package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// CatalogTTL es cuánto sirve un catálogo scrapeado antes de volver a pedirlo.
const CatalogTTL = 7 * 24 * time.Hour

const catalogKey = "catalog"

// CatalogService cachea el catálogo de juegos. Varios comandos que encuentran
// el catálogo vencido a la vez comparten un solo scrape.
type CatalogService struct {
	scraper Scraper
	store   CatalogStore
	log     *zap.Logger
	now     func() time.Time
	sf      singleflight.Group
}

func NewCatalogService(sc Scraper, st CatalogStore, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{scraper: sc, store: st, log: log, now: time.Now}
}

// Catalog devuelve los juegos, scrapeando sólo si lo guardado venció.
// Si el scrape falla se devuelve el error y lo guardado queda como estaba.
func (s *CatalogService) Catalog(ctx context.Context) ([]domain.GameDescriptor, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if st.Fresh(s.now()) {
		return slices.Clone(st.Games), nil
	}

	v, err, shared := s.sf.Do(catalogKey, func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("refresh de catálogo compartido")
	}
	return slices.Clone(v.([]domain.GameDescriptor)), nil
}

func (s *CatalogService) refresh(ctx context.Context) ([]domain.GameDescriptor, error) {
	// otro refresh pudo haber terminado entre el Load y el Do
	if st, err := s.store.Load(ctx); err == nil && st.Fresh(s.now()) {
		return st.Games, nil
	}

	start := s.now()
	games, err := s.scraper.FetchCatalog(ctx)
	if err != nil {
		s.log.Warn("scrape de catálogo falló", zap.Error(err))
		return nil, err
	}
	st := domain.CatalogState{ExpiresAt: s.now().Add(CatalogTTL), Games: games}
	if err := s.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	s.log.Info("catálogo actualizado",
		zap.Int("games", len(games)),
		zap.Duration("took", s.now().Sub(start)),
		zap.Time("expires_at", st.ExpiresAt),
	)
	return games, nil
}

// Find busca por nombre o id exactos (distingue mayúsculas). Gana el primero
// en orden de catálogo.
func (s *CatalogService) Find(ctx context.Context, nameOrID string) (domain.GameDescriptor, bool, error) {
	games, err := s.Catalog(ctx)
	if err != nil {
		return domain.GameDescriptor{}, false, err
	}
	for _, g := range games {
		if g.GameName == nameOrID || g.GameID == nameOrID {
			return g, true, nil
		}
	}
	return domain.GameDescriptor{}, false, nil
}

// Invalidate vence el catálogo guardado; el próximo Catalog scrapea.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	s.sf.Forget(catalogKey)
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	s.log.Info("catálogo invalidado")
	return nil
}
