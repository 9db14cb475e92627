package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

var t0 = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func room(game, id string, exp time.Time) domain.RoomRecord {
	return domain.RoomRecord{GameName: game, GameID: game, RoomID: id, RuleLink: domain.NoRuleLink, ExpiresAt: exp}
}

func ids(rooms []domain.RoomRecord) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.GameID+"/"+r.RoomID)
	}
	return out
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newFileStore(t *testing.T, clock *fakeClock) (*RoomStore, *FileBackend) {
	t.Helper()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewRoomStore(b, nil, WithClock(clock.Now)), b
}

func seed(t *testing.T, s *RoomStore, group string, rooms ...domain.RoomRecord) {
	t.Helper()
	for _, r := range rooms {
		require.NoError(t, s.Add(context.Background(), group, r))
	}
}

func TestRoomStore_MissingGroupIsEmpty(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Empty(t, rooms)

	ok, err := s.Exists(context.Background(), "g1", "uno", "ab12")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoomStore_AddKeepsInsertionOrder(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1",
		room("uno", "aaaa", t0.Add(time.Hour)),
		room("gomoku", "bbbb", t0.Add(time.Hour)),
		room("uno", "cccc", t0.Add(time.Hour)),
	)

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"uno/aaaa", "gomoku/bbbb", "uno/cccc"}, ids(rooms)); diff != "" {
		t.Errorf("orden (-want +got):\n%s", diff)
	}
}

func TestRoomStore_AddDoesNotDeduplicate(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	r := room("uno", "ab12", t0.Add(time.Hour))
	seed(t, s, "g1", r, r)

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
}

func TestRoomStore_GroupsAreIsolated(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1", room("uno", "ab12", t0.Add(time.Hour)))
	seed(t, s, "g2", room("uno", "ab12", t0.Add(time.Hour)))

	ok, err := s.Exists(context.Background(), "g2", "uno", "ab12")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.RemoveByIdentity(context.Background(), "g1", "uno", "ab12")
	require.NoError(t, err)

	ok, err = s.Exists(context.Background(), "g2", "uno", "ab12")
	require.NoError(t, err)
	require.True(t, ok, "borrar en g1 no debe tocar g2")
}

func TestRoomStore_PruneExpired(t *testing.T) {
	clock := &fakeClock{now: t0}
	s, _ := newFileStore(t, clock)
	seed(t, s, "g1",
		room("a", "0001", t0.Add(-time.Second)), // vencida
		room("b", "0002", t0.Add(time.Minute)),
		room("c", "0003", t0), // now == expires_at -> vencida
		room("d", "0004", t0.Add(2*time.Minute)),
	)

	n, err := s.PruneExpired(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"b/0002", "d/0004"}, ids(rooms)); diff != "" {
		t.Errorf("sobrevivientes (-want +got):\n%s", diff)
	}

	clock.now = t0.Add(time.Minute)
	n, err = s.PruneExpired(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRoomStore_RemoveByIndex_ShiftsPositions(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1",
		room("a", "0000", t0.Add(time.Hour)),
		room("b", "0001", t0.Add(time.Hour)),
		room("c", "0002", t0.Add(time.Hour)),
	)
	ctx := context.Background()

	removed, ok, err := s.RemoveByIndex(ctx, "g1", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0001", removed.RoomID)

	rooms, err := s.List(ctx, "g1")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a/0000", "c/0002"}, ids(rooms)); diff != "" {
		t.Errorf("después del primer borrado (-want +got):\n%s", diff)
	}

	// mismo índice otra vez: ahora apunta a la que antes era la posición 2
	removed, ok, err = s.RemoveByIndex(ctx, "g1", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0002", removed.RoomID)

	// y una tercera vez ya no hay nada en esa posición
	_, ok, err = s.RemoveByIndex(ctx, "g1", 1)
	require.NoError(t, err)
	require.False(t, ok)

	rooms, err = s.List(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"a/0000"}, ids(rooms))
}

func TestRoomStore_RemoveByIndex_OutOfRangeIsNoop(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1", room("a", "0000", t0.Add(time.Hour)))

	for _, i := range []int{-1, 1, 99} {
		_, ok, err := s.RemoveByIndex(context.Background(), "g1", i)
		require.NoError(t, err)
		require.False(t, ok, "index %d", i)
	}
	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
}

func TestRoomStore_RemoveByIdentity(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1",
		room("uno", "ab12", t0.Add(time.Hour)),
		room("uno", "zz99", t0.Add(time.Hour)),
		room("uno", "ab12", t0.Add(2*time.Hour)),
	)
	ctx := context.Background()

	ok, err := s.RemoveByIdentity(ctx, "g1", "uno", "ab12")
	require.NoError(t, err)
	require.True(t, ok)

	rooms, err := s.List(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"uno/zz99", "uno/ab12"}, ids(rooms))
	require.Equal(t, t0.Add(2*time.Hour), rooms[1].ExpiresAt.UTC(), "sólo se borra la primera coincidencia")

	// argumentos al revés no matchean
	ok, err = s.RemoveByIdentity(ctx, "g1", "ab12", "uno")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoomStore_Clear(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})
	seed(t, s, "g1", room("uno", "ab12", t0.Add(time.Hour)))

	require.NoError(t, s.Clear(context.Background(), "g1"))
	require.NoError(t, s.Clear(context.Background(), "g1"), "clear de un grupo vacío no falla")

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Empty(t, rooms)
}

func TestRoomStore_CorruptFileFallsBackToEmpty(t *testing.T) {
	s, b := newFileStore(t, &fakeClock{now: t0})
	path, err := b.groupPath("g1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("games: [ {not yaml"), 0o644))

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Empty(t, rooms)

	// y la próxima escritura deja un archivo sano
	seed(t, s, "g1", room("uno", "ab12", t0.Add(time.Hour)))
	rooms, err = s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
}

func TestRoomStore_ConcurrentAddsInProcess(t *testing.T) {
	s, _ := newFileStore(t, &fakeClock{now: t0})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := string(rune('a'+i)) + "000"
			_ = s.Add(context.Background(), "g1", room("uno", code, t0.Add(time.Hour)))
		}(i)
	}
	wg.Wait()

	rooms, err := s.List(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rooms, 20)
}

type failingBackend struct{ GroupBackend }

var errDisk = errors.New("disk on fire")

func (failingBackend) LoadGroup(context.Context, string) ([]domain.RoomRecord, error) {
	return nil, errDisk
}

func TestRoomStore_ReadErrorsPropagate(t *testing.T) {
	s := NewRoomStore(failingBackend{}, nil)
	err := s.Add(context.Background(), "g1", room("uno", "ab12", t0))
	require.ErrorIs(t, err, errDisk)
}

func TestFileBackend_InvalidGroup(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	for _, g := range []string{"", "..", "a/b", `a\b`} {
		_, err := b.LoadGroup(context.Background(), g)
		require.ErrorIs(t, err, ErrInvalidGroup, "group %q", g)
	}
}

func TestFileBackend_WritesHumanReadableYAML(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.SaveGroup(context.Background(), "123", []domain.RoomRecord{room("uno", "ab12", t0)}))

	raw, err := os.ReadFile(filepath.Join(dir, "groups", "123.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "games:")
	require.Contains(t, string(raw), "room_id: ab12")
	require.Contains(t, string(raw), "expires_at: 2026-10-16T20:00:00Z")
}
