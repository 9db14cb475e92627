package hullqin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

const defaultBase = "https://game.hullqin.cn"

// Renderer lo implementa internal/adapters/browser.Manager.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Scraper extrae catálogo, reglas, salas y ocupación del sitio de juegos.
type Scraper struct {
	r               Renderer
	log             *zap.Logger
	baseURL         string
	ruleConcurrency int
}

func New(r Renderer, log *zap.Logger, opts ...Option) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scraper{r: r, log: log, baseURL: defaultBase, ruleConcurrency: 4}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scraper) BaseURL() string { return s.baseURL }

func (s *Scraper) render(ctx context.Context, op, target, path string) (*html.Node, string, error) {
	raw, err := s.r.Render(ctx, s.baseURL+path)
	if err != nil {
		return nil, "", &ScrapeError{Op: op, Target: target, Err: err}
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, "", &ScrapeError{Op: op, Target: target, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, raw, nil
}

// FetchCatalog trae la lista completa de juegos con su link de reglas.
// Si la home no carga o no trae juegos es error; una regla que falta sólo
// deja ese juego con "none".
func (s *Scraper) FetchCatalog(ctx context.Context) ([]domain.GameDescriptor, error) {
	s.log.Info("scrapeando catálogo")
	doc, _, err := s.render(ctx, "fetch_catalog", "/", "/")
	if err != nil {
		return nil, err
	}
	games, skipped := extractCatalog(doc)
	if skipped > 0 {
		s.log.Warn("anchors del catálogo descartados", zap.Int("skipped", skipped), zap.Int("kept", len(games)))
	}
	if len(games) == 0 {
		return nil, &ScrapeError{Op: "fetch_catalog", Target: "/", Err: ErrElementNotFound}
	}
	s.log.Info("catálogo obtenido", zap.Int("games", len(games)))

	g := new(errgroup.Group)
	g.SetLimit(s.ruleConcurrency)
	for i := range games {
		i := i
		g.Go(func() error {
			games[i].RuleLink = s.ruleLink(ctx, games[i].GameID)
			return nil
		})
	}
	_ = g.Wait()
	return games, nil
}

func (s *Scraper) ruleLink(ctx context.Context, gameID string) string {
	doc, _, err := s.render(ctx, "fetch_rule_link", gameID, "/"+url.PathEscape(gameID))
	if err != nil {
		s.log.Warn("sin link de reglas", zap.String("game", gameID), zap.Error(err))
		return domain.NoRuleLink
	}
	link, ok := extractRuleLink(doc, s.baseURL)
	if !ok {
		return domain.NoRuleLink
	}
	return link
}

// ResolveRoom: si el usuario pasó un código se devuelve tal cual, sin tocar la
// red (no se valida que esté libre). Si no, se toma el primer link de creación
// de sala de la página del juego.
func (s *Scraper) ResolveRoom(ctx context.Context, gameID, roomID string) (string, error) {
	if roomID != "" {
		return roomID, nil
	}
	doc, _, err := s.render(ctx, "resolve_room", gameID, "/"+url.PathEscape(gameID))
	if err != nil {
		return "", err
	}
	id, ok := extractRoomID(doc, gameID)
	if !ok {
		return "", &ScrapeError{Op: "resolve_room", Target: gameID, Err: ErrElementNotFound}
	}
	s.log.Info("sala creada", zap.String("game", gameID), zap.String("room", id))
	return id, nil
}

// FetchOccupancy es best-effort: (nil, nil) si la sala no muestra estado de juego.
func (s *Scraper) FetchOccupancy(ctx context.Context, gameID, roomID string) (*domain.Occupancy, error) {
	target := gameID + "/" + roomID
	doc, raw, err := s.render(ctx, "fetch_occupancy", target, "/"+url.PathEscape(gameID)+"/"+url.PathEscape(roomID))
	if err != nil {
		return nil, err
	}
	return extractOccupancy(doc, raw), nil
}
