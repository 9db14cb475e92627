package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	RoomTTL          time.Duration // ROOM_EXPIRED_SECONDS, default 1200s
	BrowserHeadless  bool
	BrowserBin       string // opcional, si no se busca en el PATH
	OccupancyEnabled bool   // scraping de asientos, best-effort
	BaseURL          string

	StoreBackend string // file | postgres
	DataDir      string
	DatabaseURL  string

	DiscordToken string
	DiscordGuild string // vacío = comandos globales
	AdminRoleIDs []string

	LogLevel string
}

// Load lee el entorno (el .env lo carga main con godotenv).
// requireDiscord = false para los subcomandos de CLI que no abren sesión.
func Load(requireDiscord bool) (Config, error) {
	var missing []string
	get := func(k string, req bool, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" && req {
			missing = append(missing, k)
		}
		if v == "" {
			return def
		}
		return v
	}

	ttlSec, err := strconv.Atoi(get("ROOM_EXPIRED_SECONDS", false, "1200"))
	if err != nil || ttlSec <= 0 {
		return Config{}, fmt.Errorf("ROOM_EXPIRED_SECONDS inválido: %q", os.Getenv("ROOM_EXPIRED_SECONDS"))
	}
	headless, err := strconv.ParseBool(get("BROWSER_HEADLESS", false, "true"))
	if err != nil {
		return Config{}, fmt.Errorf("BROWSER_HEADLESS: %w", err)
	}
	occupancy, err := strconv.ParseBool(get("OCCUPANCY_ENABLED", false, "false"))
	if err != nil {
		return Config{}, fmt.Errorf("OCCUPANCY_ENABLED: %w", err)
	}

	cfg := Config{
		RoomTTL:          time.Duration(ttlSec) * time.Second,
		BrowserHeadless:  headless,
		BrowserBin:       get("BROWSER_BIN", false, ""),
		OccupancyEnabled: occupancy,
		BaseURL:          get("HULLQIN_BASE_URL", false, "https://game.hullqin.cn"),
		StoreBackend:     strings.ToLower(get("STORE_BACKEND", false, BackendFile)),
		DataDir:          get("DATA_DIR", false, "./data"),
		DiscordToken:     get("DISCORD_BOT_TOKEN", requireDiscord, ""),
		DiscordGuild:     get("DISCORD_GUILD_ID", false, ""),
		AdminRoleIDs:     splitList(get("ADMIN_ROLE_IDS", false, "")),
		LogLevel:         get("LOG_LEVEL", false, "info"),
	}

	switch cfg.StoreBackend {
	case BackendFile:
	case BackendPostgres:
		cfg.DatabaseURL = get("DATABASE_URL", true, "")
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND desconocido: %q", cfg.StoreBackend)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("faltante env %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
