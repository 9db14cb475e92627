package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// RoomStore maneja las salas de cada grupo sobre un GroupBackend.
//
// Cada operación es un read-modify-write de la colección entera. El mutex por
// grupo sólo serializa una operación contra otra dentro de este proceso: dos
// comandos seguidos (listar y después borrar por índice) pueden ver colecciones
// distintas, y dos procesos sobre el mismo backend pueden pisarse.
type RoomStore struct {
	backend GroupBackend
	log     *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type StoreOption func(*RoomStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *RoomStore) { s.now = now }
}

func NewRoomStore(b GroupBackend, log *zap.Logger, opts ...StoreOption) *RoomStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RoomStore{
		backend: b,
		log:     log,
		now:     time.Now,
		locks:   map[string]*sync.Mutex{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RoomStore) lock(group string) func() {
	s.mu.Lock()
	l, ok := s.locks[group]
	if !ok {
		l = &sync.Mutex{}
		s.locks[group] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *RoomStore) load(ctx context.Context, group string) ([]domain.RoomRecord, error) {
	rooms, err := s.backend.LoadGroup(ctx, group)
	if errors.Is(err, ErrCorrupt) {
		s.log.Warn("colección corrupta, usando vacía", zap.String("group", group), zap.Error(err))
		return nil, nil
	}
	return rooms, err
}

// mutate aplica fn bajo el lock del grupo y reescribe sólo si hubo cambios.
func (s *RoomStore) mutate(ctx context.Context, group string, fn func([]domain.RoomRecord) ([]domain.RoomRecord, bool)) error {
	unlock := s.lock(group)
	defer unlock()

	rooms, err := s.load(ctx, group)
	if err != nil {
		return err
	}
	next, changed := fn(rooms)
	if !changed {
		return nil
	}
	return s.backend.SaveGroup(ctx, group, next)
}

// List devuelve la colección tal cual está guardada (sin podar).
func (s *RoomStore) List(ctx context.Context, group string) ([]domain.RoomRecord, error) {
	unlock := s.lock(group)
	defer unlock()
	return s.load(ctx, group)
}

// Add agrega al final. No valida duplicados: eso lo hace quien llama con Exists.
func (s *RoomStore) Add(ctx context.Context, group string, r domain.RoomRecord) error {
	return s.mutate(ctx, group, func(rooms []domain.RoomRecord) ([]domain.RoomRecord, bool) {
		out := make([]domain.RoomRecord, 0, len(rooms)+1)
		out = append(out, rooms...)
		return append(out, r), true
	})
}

func (s *RoomStore) Exists(ctx context.Context, group, gameID, roomID string) (bool, error) {
	rooms, err := s.List(ctx, group)
	if err != nil {
		return false, err
	}
	return indexOf(rooms, domain.RoomKey{GameID: gameID, RoomID: roomID}) >= 0, nil
}

// RemoveByIdentity borra la primera coincidencia; no-op si no existe.
func (s *RoomStore) RemoveByIdentity(ctx context.Context, group, gameID, roomID string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, group, func(rooms []domain.RoomRecord) ([]domain.RoomRecord, bool) {
		i := indexOf(rooms, domain.RoomKey{GameID: gameID, RoomID: roomID})
		var out []domain.RoomRecord
		out, _, removed = removeAt(rooms, i)
		return out, removed
	})
	return removed, err
}

// RemoveByIndex borra por posición. Fuera de rango es un no-op silencioso;
// el chequeo de rango con mensaje al usuario es responsabilidad de quien llama.
// Ojo: después de borrar, todos los índices mayores se corren uno.
func (s *RoomStore) RemoveByIndex(ctx context.Context, group string, index int) (domain.RoomRecord, bool, error) {
	var (
		removed domain.RoomRecord
		ok      bool
	)
	err := s.mutate(ctx, group, func(rooms []domain.RoomRecord) ([]domain.RoomRecord, bool) {
		var out []domain.RoomRecord
		out, removed, ok = removeAt(rooms, index)
		return out, ok
	})
	return removed, ok, err
}

// PruneExpired borra todo lo vencido y devuelve cuántas se fueron.
func (s *RoomStore) PruneExpired(ctx context.Context, group string) (int, error) {
	var n int
	err := s.mutate(ctx, group, func(rooms []domain.RoomRecord) ([]domain.RoomRecord, bool) {
		var out []domain.RoomRecord
		out, n = pruneExpired(rooms, s.now())
		return out, n > 0
	})
	if n > 0 {
		s.log.Debug("salas vencidas podadas", zap.String("group", group), zap.Int("n", n))
	}
	return n, err
}

// Clear deja el grupo vacío.
func (s *RoomStore) Clear(ctx context.Context, group string) error {
	unlock := s.lock(group)
	defer unlock()
	return s.backend.DeleteGroup(ctx, group)
}
