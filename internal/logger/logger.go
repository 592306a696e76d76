package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/homeloto/retail-api/internal/config"
)

const envDevelopment = "development"

// globalLevel drives the logger installed by Init and can be changed while it runs.
var globalLevel = zap.NewAtomicLevel()

// Init builds the process-wide zap logger and installs it with zap.ReplaceGlobals.
// When conf.File is set the output is also written to a size-rotated file.
func Init(environment string, conf *config.LogConfig) error {
	level, err := parseLevel(conf)
	if err != nil {
		return err
	}
	globalLevel.SetLevel(level)

	zap.ReplaceGlobals(build(environment, conf, globalLevel))

	return nil
}

// SetLevel changes the level of the logger installed by Init.
func SetLevel(name string) error {
	level, err := parseLevel(&config.LogConfig{Level: name})
	if err != nil {
		return err
	}

	if level != globalLevel.Level() {
		globalLevel.SetLevel(level)
		zap.L().Info("log level changed", zap.Stringer("level", level))
	}

	return nil
}

func New(environment string, conf *config.LogConfig) (*zap.Logger, error) {
	level, err := parseLevel(conf)
	if err != nil {
		return nil, err
	}

	return build(environment, conf, zap.NewAtomicLevelAt(level)), nil
}

func parseLevel(conf *config.LogConfig) (zapcore.Level, error) {
	level := zapcore.InfoLevel
	if conf != nil && conf.Level != "" {
		if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
			return level, fmt.Errorf("invalid log level %q -> %w", conf.Level, err)
		}
	}

	return level, nil
}

func build(environment string, conf *config.LogConfig, level zap.AtomicLevel) *zap.Logger {
	var encoderConf zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if environment == envDevelopment {
		encoderConf = zap.NewDevelopmentEncoderConfig()
		encoderConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	} else {
		encoderConf = zap.NewProductionEncoderConfig()
		encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConf)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if conf != nil && conf.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	opts := []zap.Option{zap.AddCaller()}
	if environment == envDevelopment {
		opts = append(opts, zap.Development())
	}

	return zap.New(core, opts...)
}
