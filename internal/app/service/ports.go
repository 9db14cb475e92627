package service

import (
	"context"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// Lo implementa internal/adapters/hullqin.Scraper
type Scraper interface {
	FetchCatalog(ctx context.Context) ([]domain.GameDescriptor, error)
	ResolveRoom(ctx context.Context, gameID, roomID string) (string, error)
	FetchOccupancy(ctx context.Context, gameID, roomID string) (*domain.Occupancy, error)
}

// Lo implementa internal/infra/storage.CatalogRepo
type CatalogStore interface {
	Load(ctx context.Context) (domain.CatalogState, error)
	Save(ctx context.Context, st domain.CatalogState) error
	Reset(ctx context.Context) error
}

// Lo implementa internal/infra/storage.RoomStore
type RoomRepo interface {
	List(ctx context.Context, group string) ([]domain.RoomRecord, error)
	Add(ctx context.Context, group string, r domain.RoomRecord) error
	RemoveByIdentity(ctx context.Context, group, gameID, roomID string) (bool, error)
	RemoveByIndex(ctx context.Context, group string, index int) (domain.RoomRecord, bool, error)
	PruneExpired(ctx context.Context, group string) (int, error)
	Clear(ctx context.Context, group string) error
}
