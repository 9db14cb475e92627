package storage

import (
	"context"
	"errors"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// ErrCorrupt marca estado persistido ilegible; los repos caen al default vacío.
var ErrCorrupt = errors.New("estado persistido corrupto")

var ErrInvalidGroup = errors.New("group id inválido")

// GroupBackend guarda la colección completa de cada grupo.
// LoadGroup devuelve (nil, nil) si el grupo nunca se escribió.
type GroupBackend interface {
	LoadGroup(ctx context.Context, group string) ([]domain.RoomRecord, error)
	SaveGroup(ctx context.Context, group string, rooms []domain.RoomRecord) error
	DeleteGroup(ctx context.Context, group string) error
}

// CatalogBackend guarda el único CatalogState del proceso.
type CatalogBackend interface {
	LoadCatalog(ctx context.Context) (domain.CatalogState, error)
	SaveCatalog(ctx context.Context, st domain.CatalogState) error
}
