package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Init configures the global zerolog logger. Development gets a console
// writer, every other environment gets JSON lines on stdout.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	switch env {
	case "development", "dev":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(cw).With().Timestamp().Logger()
		return
	case "test":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// GormLogger returns a gorm logger that writes through zerolog. Slow queries
// and errors are always reported; development also traces every statement.
func GormLogger(env string) gormlogger.Interface {
	level := gormlogger.Warn
	switch env {
	case "development", "dev":
		level = gormlogger.Info
	case "test":
		level = gormlogger.Silent
	}
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Info().Str("component", "gorm").Msgf(format, args...)
}
