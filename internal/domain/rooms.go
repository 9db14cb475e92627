package domain

import (
	"regexp"
	"strings"
	"time"
)

// NoRuleLink es el valor que guardamos cuando el juego no publica reglas.
const NoRuleLink = "none"

// AnonymousPlayer se usa para asientos ocupados sin nombre visible.
const AnonymousPlayer = "神秘人"

var reRoomCode = regexp.MustCompile(`^[a-z0-9]{4}$`)

// ValidRoomCode: 4 caracteres, minúsculas o dígitos.
func ValidRoomCode(code string) bool { return reRoomCode.MatchString(code) }

type GameDescriptor struct {
	GameName string `yaml:"game_name" json:"game_name"`
	GameID   string `yaml:"game_id" json:"game_id"`
	RuleLink string `yaml:"rule_link" json:"rule_link"`
}

// HasRules indica si el juego tiene un link de reglas real.
func (g GameDescriptor) HasRules() bool {
	return g.RuleLink != "" && g.RuleLink != NoRuleLink
}

type RoomKey struct {
	GameID string
	RoomID string
}

type RoomRecord struct {
	GameName  string    `yaml:"game_name" json:"game_name"`
	GameID    string    `yaml:"game_id" json:"game_id"`
	RoomID    string    `yaml:"room_id" json:"room_id"`
	RuleLink  string    `yaml:"rule_link" json:"rule_link"`
	ExpiresAt time.Time `yaml:"expires_at" json:"expires_at"`
}

func (r RoomRecord) Key() RoomKey { return RoomKey{GameID: r.GameID, RoomID: r.RoomID} }

// Expired: vencido cuando now >= expires_at.
func (r RoomRecord) Expired(now time.Time) bool { return !now.Before(r.ExpiresAt) }

// URL arma el link de la sala sobre la base del sitio.
func (r RoomRecord) URL(base string) string {
	return RoomURL(base, r.GameID, r.RoomID)
}

func RoomURL(base, gameID, roomID string) string {
	return strings.TrimRight(base, "/") + "/" + gameID + "/" + roomID
}

// GroupRooms es la colección persistida de un grupo (orden de inserción).
type GroupRooms struct {
	Games []RoomRecord `yaml:"games" json:"games"`
}

type CatalogState struct {
	ExpiresAt time.Time        `yaml:"expires_at" json:"expires_at"`
	Games     []GameDescriptor `yaml:"games" json:"games"`
}

// Fresh: el catálogo sirve mientras now < expires_at.
func (c CatalogState) Fresh(now time.Time) bool { return now.Before(c.ExpiresAt) }

type Occupancy struct {
	Current int
	Total   int
	Players []string
}
