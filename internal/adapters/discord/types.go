package discord

import (
	"context"

	"github.com/jose-valero/tabletop-rooms-bot/internal/app/service"
	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// Lo implementa internal/app/service.RoomsService
type RoomsAPI interface {
	Open(ctx context.Context, group, gameNameOrID, roomCode string) (service.OpenResult, error)
	Query(ctx context.Context, group, gameFilter string) ([]domain.RoomRecord, error)
	CloseByIndex(ctx context.Context, group string, index int) (domain.RoomRecord, error)
	CloseByIdentity(ctx context.Context, group, gameNameOrID, roomID string) (domain.RoomRecord, error)
	Occupancy(ctx context.Context, r domain.RoomRecord) (*domain.Occupancy, error)
	OccupancyEnabled() bool
	Clear(ctx context.Context, group string) error
}

// Lo implementa internal/app/service.CatalogService
type CatalogAPI interface {
	Catalog(ctx context.Context) ([]domain.GameDescriptor, error)
	Invalidate(ctx context.Context) error
}
