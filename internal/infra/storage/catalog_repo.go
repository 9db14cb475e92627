package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

type CatalogRepo struct {
	backend CatalogBackend
	log     *zap.Logger
}

func NewCatalogRepo(b CatalogBackend, log *zap.Logger) *CatalogRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogRepo{backend: b, log: log}
}

// Load nunca falla por contenido corrupto: devuelve el estado vacío (vencido).
func (r *CatalogRepo) Load(ctx context.Context) (domain.CatalogState, error) {
	st, err := r.backend.LoadCatalog(ctx)
	if errors.Is(err, ErrCorrupt) {
		r.log.Warn("catálogo corrupto, se va a volver a scrapear", zap.Error(err))
		return domain.CatalogState{}, nil
	}
	return st, err
}

func (r *CatalogRepo) Save(ctx context.Context, st domain.CatalogState) error {
	return r.backend.SaveCatalog(ctx, st)
}

// Reset deja el catálogo vencido y vacío.
func (r *CatalogRepo) Reset(ctx context.Context) error {
	return r.backend.SaveCatalog(ctx, domain.CatalogState{})
}
