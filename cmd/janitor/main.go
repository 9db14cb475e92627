package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/logging"
)

const defaultGrace = 24 * time.Hour

// Borra los grupos cuya colección está vacía o tiene todas las salas vencidas
// hace más de grace, y que nadie tocó en ese tiempo. El bot poda en cada
// comando; esto sólo limpia grupos que dejaron de usarlo.
const deleteStaleGroups = `
DELETE FROM group_rooms g
WHERE g.updated_at < now() - make_interval(secs => $1)
  AND NOT EXISTS (
    SELECT 1 FROM jsonb_array_elements(g.rooms) r
    WHERE (r->>'expires_at')::timestamptz > now() - make_interval(secs => $1)
  );`

func graceFromEnv() (time.Duration, error) {
	raw := os.Getenv("JANITOR_GRACE_HOURS")
	if raw == "" {
		return defaultGrace, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("JANITOR_GRACE_HOURS inválido: %q", raw)
	}
	return time.Duration(h) * time.Hour, nil
}

func handler(ctx context.Context) (string, error) {
	log, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return "", err
	}
	defer func() { _ = log.Sync() }()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}
	grace, err := graceFromEnv()
	if err != nil {
		return err.Error(), nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := pool.Exec(cctx, deleteStaleGroups, grace.Seconds())
	if err != nil {
		log.Error("janitor", zap.Error(err))
		return "", err
	}
	log.Info("grupos vencidos borrados", zap.Int64("rows", tag.RowsAffected()), zap.Duration("grace", grace))
	return fmt.Sprintf("ok: %d", tag.RowsAffected()), nil
}

func main() { lambda.Start(handler) }
