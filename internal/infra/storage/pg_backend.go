package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// PGBackend guarda cada colección como un jsonb por grupo, así se mantiene la
// misma semántica de "reescribir la colección entera" que el backend de archivos.
type PGBackend struct{ db *sql.DB }

func NewPGBackend(db *sql.DB) *PGBackend { return &PGBackend{db: db} }

func (b *PGBackend) LoadGroup(ctx context.Context, group string) ([]domain.RoomRecord, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx, `SELECT rooms FROM group_rooms WHERE group_id = $1`, group).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rooms []domain.RoomRecord
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("%w: group %s: %v", ErrCorrupt, group, err)
	}
	return rooms, nil
}

func (b *PGBackend) SaveGroup(ctx context.Context, group string, rooms []domain.RoomRecord) error {
	if rooms == nil {
		rooms = []domain.RoomRecord{}
	}
	raw, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
INSERT INTO group_rooms (group_id, rooms, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (group_id) DO UPDATE SET
  rooms      = EXCLUDED.rooms,
  updated_at = now()
`, group, string(raw))
	return err
}

func (b *PGBackend) DeleteGroup(ctx context.Context, group string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM group_rooms WHERE group_id = $1`, group)
	return err
}

func (b *PGBackend) LoadCatalog(ctx context.Context) (domain.CatalogState, error) {
	var (
		exp time.Time
		raw []byte
	)
	err := b.db.QueryRowContext(ctx, `SELECT expires_at, games FROM catalog_state WHERE id = 1`).Scan(&exp, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogState{}, nil
	}
	if err != nil {
		return domain.CatalogState{}, err
	}
	st := domain.CatalogState{ExpiresAt: exp}
	if err := json.Unmarshal(raw, &st.Games); err != nil {
		return domain.CatalogState{}, fmt.Errorf("%w: catalog: %v", ErrCorrupt, err)
	}
	return st, nil
}

func (b *PGBackend) SaveCatalog(ctx context.Context, st domain.CatalogState) error {
	if st.Games == nil {
		st.Games = []domain.GameDescriptor{}
	}
	raw, err := json.Marshal(st.Games)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
INSERT INTO catalog_state (id, expires_at, games)
VALUES (1, $1, $2::jsonb)
ON CONFLICT (id) DO UPDATE SET
  expires_at = EXCLUDED.expires_at,
  games      = EXCLUDED.games
`, st.ExpiresAt, string(raw))
	return err
}
