package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	TurnKey   ctxKey = "turn"
	LoggerKey ctxKey = "logger"
)

// WithTurn tags ctx with the turn number reported by Time.
func WithTurn(ctx context.Context, turn int) context.Context {
	return context.WithValue(ctx, TurnKey, turn)
}

// TurnFrom returns the turn number stored by WithTurn, or -1.
func TurnFrom(ctx context.Context) int {
	if turn, ok := ctx.Value(TurnKey).(int); ok {
		return turn
	}
	return -1
}

// WithLogger makes Time write through logger instead of the standard logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, LoggerKey, logger)
}

// LoggerFrom returns the logger stored by WithLogger, or the standard logger.
func LoggerFrom(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*log.Logger); ok {
		return logger
	}
	return log.Default()
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	turn := TurnFrom(ctx)
	logger := LoggerFrom(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Printf("turn=%d op=%s dur=%dms err=%v", turn, name, dur.Milliseconds(), *errp)
			return
		}
		logger.Printf("turn=%d op=%s dur=%dms", turn, name, dur.Milliseconds())
	}
}
