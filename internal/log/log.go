package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
)

// Options controls the process logger.
type Options struct {
	Level   string   // trace|debug|info|warn|error
	Writers []string // "console", "file"
	File    string   // path for the rotated file writer
}

// Setup configures the package logger. Safe to call once at startup.
func Setup(o Options) {
	level, err := zerolog.ParseLevel(strings.ToLower(o.Level))
	if err != nil || o.Level == "" {
		level = zerolog.InfoLevel
	}

	var ws []io.Writer
	for _, w := range o.Writers {
		switch w {
		case "console":
			ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		case "file":
			ws = append(ws, &lumberjack.Logger{
				Filename:   o.File,
				MaxSize:    10, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}
	if len(ws) == 0 {
		ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	l := zerolog.New(zerolog.MultiLevelWriter(ws...)).Level(level).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the process logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}
