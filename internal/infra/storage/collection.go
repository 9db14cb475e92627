package storage

import (
	"time"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// Operaciones puras sobre la colección de un grupo. Nunca mutan el slice de
// entrada: siempre devuelven uno nuevo para que el save escriba lo que se ve.

func indexOf(rooms []domain.RoomRecord, key domain.RoomKey) int {
	for i, r := range rooms {
		if r.Key() == key {
			return i
		}
	}
	return -1
}

func removeAt(rooms []domain.RoomRecord, i int) ([]domain.RoomRecord, domain.RoomRecord, bool) {
	if i < 0 || i >= len(rooms) {
		return rooms, domain.RoomRecord{}, false
	}
	out := make([]domain.RoomRecord, 0, len(rooms)-1)
	out = append(out, rooms[:i]...)
	out = append(out, rooms[i+1:]...)
	return out, rooms[i], true
}

// pruneExpired conserva el orden de las que sobreviven.
func pruneExpired(rooms []domain.RoomRecord, now time.Time) ([]domain.RoomRecord, int) {
	out := make([]domain.RoomRecord, 0, len(rooms))
	for _, r := range rooms {
		if !r.Expired(now) {
			out = append(out, r)
		}
	}
	return out, len(rooms) - len(out)
}
