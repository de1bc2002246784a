package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}
}

// New строит базовый логгер приложения.
// Неизвестный уровень: info. При APP_ENV=local пишем в человекочитаемом виде.
func New(level, env string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if env == "local" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	ctx := zerolog.New(w).With().Timestamp()
	if hostname, err := os.Hostname(); err == nil {
		ctx = ctx.Str("hostname", hostname)
	}
	if pname, err := os.Executable(); err == nil {
		ctx = ctx.Str("executable", filepath.Base(pname))
	}
	return ctx.Caller().Logger().Level(lvl)
}

// Component: под-логгер компонента (postgres, s3, redis, server...)
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
