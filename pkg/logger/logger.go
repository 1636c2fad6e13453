package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

func init() {
	if err := Init(os.Getenv("APP_ENV") == "development"); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		log = zap.NewNop()
	}
}

// Init sets up the global zap logger. Development mode uses the console
// encoder with colored levels; production emits JSON.
func Init(development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	return log
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return log.Sugar()
}

func Sync() {
	_ = log.Sync()
}
