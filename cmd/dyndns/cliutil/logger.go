package cliutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jxo-me/dyndns/core/logger"
	xlogger "github.com/jxo-me/dyndns/sdk/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagLogOutput     = "log-output"
	FlagLogMaxSize    = "log-max-size"
	FlagLogMaxAge     = "log-max-age"
	FlagLogMaxBackups = "log-max-backups"
	FlagLogCompress   = "log-compress"
)

func LogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "log `LEVEL`: trace, debug, info, warn, error, fatal",
			Value:   string(logger.InfoLevel),
			EnvVars: []string{"DYNDNS_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Usage:   "log `FORMAT`: text or json",
			Value:   string(logger.TextFormat),
			EnvVars: []string{"DYNDNS_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    FlagLogOutput,
			Usage:   "log destination: stderr, stdout, none or a file `PATH`",
			Value:   "stderr",
			EnvVars: []string{"DYNDNS_LOG_OUTPUT"},
		},
		&cli.IntFlag{
			Name:  FlagLogMaxSize,
			Usage: "rotate the log file after `MB` megabytes, 0 disables rotation",
		},
		&cli.IntFlag{
			Name:  FlagLogMaxAge,
			Usage: "days to keep rotated log files",
		},
		&cli.IntFlag{
			Name:  FlagLogMaxBackups,
			Usage: "number of rotated log files to keep",
		},
		&cli.BoolFlag{
			Name:  FlagLogCompress,
			Usage: "gzip rotated log files",
		},
	}
}

// CreateLoggerFromContext builds the logger described by the log flags and
// installs it as the default.
func CreateLoggerFromContext(c *cli.Context) logger.ILogger {
	out, ok := logOutput(c)
	if !ok {
		log := xlogger.Nop()
		logger.SetDefault(log)
		return log
	}
	log := xlogger.NewLogger(
		xlogger.FormatLoggerOption(logger.LogFormat(c.String(FlagLogFormat))),
		xlogger.LevelLoggerOption(logger.LogLevel(c.String(FlagLogLevel))),
		xlogger.OutputLoggerOption(out),
	)
	logger.SetDefault(log)
	return log
}

// CreateZeroLoggerFromContext builds the zerolog logger used by the config
// file manager. It shares destination and level with the main logger.
func CreateZeroLoggerFromContext(c *cli.Context) *zerolog.Logger {
	out, ok := logOutput(c)
	if !ok {
		log := zerolog.Nop()
		return &log
	}
	if logger.LogFormat(c.String(FlagLogFormat)) != logger.JSONFormat {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	level, err := zerolog.ParseLevel(c.String(FlagLogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(out).Level(level).With().Timestamp().Str("logger", "config").Logger()
	return &log
}

var logFiles = map[string]io.Writer{}

func logOutput(c *cli.Context) (io.Writer, bool) {
	output := c.String(FlagLogOutput)
	switch output {
	case "none", "null":
		return nil, false
	case "stdout":
		return os.Stdout, true
	case "stderr", "":
		return os.Stderr, true
	}
	if w, ok := logFiles[output]; ok {
		return w, true
	}

	var out io.Writer
	if c.Int(FlagLogMaxSize) > 0 {
		out = &lumberjack.Logger{
			Filename:   output,
			MaxSize:    c.Int(FlagLogMaxSize),
			MaxAge:     c.Int(FlagLogMaxAge),
			MaxBackups: c.Int(FlagLogMaxBackups),
			LocalTime:  true,
			Compress:   c.Bool(FlagLogCompress),
		}
	} else {
		_ = os.MkdirAll(filepath.Dir(output), 0755)
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.Default().Warn(err)
			return os.Stderr, true
		}
		out = f
	}
	logFiles[output] = out
	return out, true
}
