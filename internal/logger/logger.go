package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5/middleware"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

func GetLevel() Level {
	return Level(level.Load())
}

// ParseLevel понимает debug, info и error без учёта регистра.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("неизвестный уровень логирования: %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int32(l))
	}
}

func Debug(ctx context.Context, msg string, keyvals ...any) {
	if GetLevel() > LevelDebug {
		return
	}
	output(ctx, "DEBUG", msg, keyvals)
}

func Info(ctx context.Context, msg string, keyvals ...any) {
	if GetLevel() > LevelInfo {
		return
	}
	output(ctx, "INFO", msg, keyvals)
}

// Error пишется всегда, err может быть nil.
func Error(ctx context.Context, err error, msg string, keyvals ...any) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	output(ctx, "ERROR", msg, keyvals)
}

func output(ctx context.Context, tag, msg string, keyvals []any) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		b.WriteString(" ")
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, "%v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, "%v=(MISSING)", keyvals[i])
		}
	}

	if ctx != nil {
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			b.WriteString(" request_id=")
			b.WriteString(reqID)
		}
	}

	log.Print(b.String())
}
