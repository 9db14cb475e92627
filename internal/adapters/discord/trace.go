package discord

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// withTrace agrega un id por interacción para seguirla en los logs.
func (r *Router) withTrace(fields ...zap.Field) *zap.Logger {
	return r.log.With(append([]zap.Field{zap.String("trace", uuid.NewString())}, fields...)...)
}

func step(log *zap.Logger, label string) func() {
	start := time.Now()
	return func() { log.Debug("step", zap.String("label", label), zap.Duration("took", time.Since(start))) }
}
