package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// DefaultRoomTTL es la vida de una sala registrada si no se configura otra.
const DefaultRoomTTL = 1200 * time.Second

type RoomsConfig struct {
	RoomTTL          time.Duration
	OccupancyEnabled bool
}

type RoomsService struct {
	catalog *CatalogService
	scraper Scraper
	rooms   RoomRepo
	log     *zap.Logger
	cfg     RoomsConfig
	now     func() time.Time
}

func NewRoomsService(catalog *CatalogService, sc Scraper, rooms RoomRepo, cfg RoomsConfig, log *zap.Logger) *RoomsService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RoomTTL <= 0 {
		cfg.RoomTTL = DefaultRoomTTL
	}
	return &RoomsService{catalog: catalog, scraper: sc, rooms: rooms, log: log, cfg: cfg, now: time.Now}
}

type OpenResult struct {
	Record domain.RoomRecord
	// UserSuppliedCode: la sala la creó el usuario y no se verificó en el sitio.
	UserSuppliedCode bool
}

func (s *RoomsService) game(ctx context.Context, nameOrID string) (domain.GameDescriptor, error) {
	g, ok, err := s.catalog.Find(ctx, nameOrID)
	if err != nil {
		return domain.GameDescriptor{}, err
	}
	if !ok {
		return domain.GameDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownGame, nameOrID)
	}
	return g, nil
}

// Open registra una sala del juego en el grupo. Sin código se crea una
// sala nueva en el sitio; con código se usa tal cual.
// Un rechazo no toca el store: la poda recién corre antes del Add.
func (s *RoomsService) Open(ctx context.Context, group, gameNameOrID, roomCode string) (OpenResult, error) {
	roomCode = strings.TrimSpace(roomCode)
	if roomCode != "" && !domain.ValidRoomCode(roomCode) {
		return OpenResult{}, fmt.Errorf("%w: %q", ErrInvalidRoomCode, roomCode)
	}

	g, err := s.game(ctx, gameNameOrID)
	if err != nil {
		return OpenResult{}, err
	}

	roomID, err := s.scraper.ResolveRoom(ctx, g.GameID, roomCode)
	if err != nil {
		return OpenResult{}, err
	}

	// antes de mutar nada; una sala vencida no cuenta como duplicada
	dup, err := s.liveExists(ctx, group, domain.RoomKey{GameID: g.GameID, RoomID: roomID})
	if err != nil {
		return OpenResult{}, err
	}
	if dup {
		return OpenResult{}, fmt.Errorf("%w: %s/%s", ErrDuplicateRoom, g.GameID, roomID)
	}

	if _, err := s.rooms.PruneExpired(ctx, group); err != nil {
		return OpenResult{}, err
	}

	rec := domain.RoomRecord{
		GameName:  g.GameName,
		GameID:    g.GameID,
		RoomID:    roomID,
		RuleLink:  g.RuleLink,
		ExpiresAt: s.now().Add(s.cfg.RoomTTL),
	}
	if err := s.rooms.Add(ctx, group, rec); err != nil {
		return OpenResult{}, err
	}
	s.log.Info("sala registrada",
		zap.String("group", group),
		zap.String("game", rec.GameID),
		zap.String("room", rec.RoomID),
		zap.Bool("user_code", roomCode != ""),
	)
	return OpenResult{Record: rec, UserSuppliedCode: roomCode != ""}, nil
}

func (s *RoomsService) liveExists(ctx context.Context, group string, key domain.RoomKey) (bool, error) {
	rooms, err := s.rooms.List(ctx, group)
	if err != nil {
		return false, err
	}
	now := s.now()
	for _, r := range rooms {
		if r.Key() == key && !r.Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// Query poda y lista. Con filtro, sólo las salas de ese juego.
func (s *RoomsService) Query(ctx context.Context, group, gameFilter string) ([]domain.RoomRecord, error) {
	if _, err := s.rooms.PruneExpired(ctx, group); err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx, group)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(gameFilter) == "" {
		return rooms, nil
	}

	g, err := s.game(ctx, gameFilter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoomRecord, 0, len(rooms))
	for _, r := range rooms {
		if r.GameID == g.GameID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CloseByIndex borra la sala en esa posición de la lista que mostró Query.
// No poda: podar acá correría los índices que el usuario tiene en pantalla.
func (s *RoomsService) CloseByIndex(ctx context.Context, group string, index int) (domain.RoomRecord, error) {
	rooms, err := s.rooms.List(ctx, group)
	if err != nil {
		return domain.RoomRecord{}, err
	}
	if index < 0 || index >= len(rooms) {
		return domain.RoomRecord{}, fmt.Errorf("%w: %d (hay %d)", ErrIndexOutOfRange, index, len(rooms))
	}
	rec, ok, err := s.rooms.RemoveByIndex(ctx, group, index)
	if err != nil {
		return domain.RoomRecord{}, err
	}
	if !ok {
		// la colección se achicó entre el List y el borrado
		return domain.RoomRecord{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.log.Info("sala cerrada por índice", zap.String("group", group), zap.Int("index", index), zap.String("room", rec.RoomID))
	return rec, nil
}

// CloseByIdentity borra por (juego, sala), que no se corre con las podas.
func (s *RoomsService) CloseByIdentity(ctx context.Context, group, gameNameOrID, roomID string) (domain.RoomRecord, error) {
	g, err := s.game(ctx, gameNameOrID)
	if err != nil {
		return domain.RoomRecord{}, err
	}
	roomID = strings.TrimSpace(roomID)
	ok, err := s.rooms.RemoveByIdentity(ctx, group, g.GameID, roomID)
	if err != nil {
		return domain.RoomRecord{}, err
	}
	if !ok {
		return domain.RoomRecord{}, fmt.Errorf("%w: %s/%s", ErrRoomNotFound, g.GameID, roomID)
	}
	s.log.Info("sala cerrada", zap.String("group", group), zap.String("game", g.GameID), zap.String("room", roomID))
	return domain.RoomRecord{GameName: g.GameName, GameID: g.GameID, RoomID: roomID, RuleLink: g.RuleLink}, nil
}

// Occupancy es opcional: con el flag apagado devuelve (nil, nil) sin abrir
// ninguna página.
func (s *RoomsService) Occupancy(ctx context.Context, r domain.RoomRecord) (*domain.Occupancy, error) {
	if !s.cfg.OccupancyEnabled {
		return nil, nil
	}
	occ, err := s.scraper.FetchOccupancy(ctx, r.GameID, r.RoomID)
	if err != nil {
		s.log.Debug("sin ocupación", zap.String("room", r.RoomID), zap.Error(err))
		return nil, err
	}
	return occ, nil
}

func (s *RoomsService) OccupancyEnabled() bool { return s.cfg.OccupancyEnabled }

func (s *RoomsService) Clear(ctx context.Context, group string) error {
	if err := s.rooms.Clear(ctx, group); err != nil {
		return err
	}
	s.log.Info("grupo vaciado", zap.String("group", group))
	return nil
}
