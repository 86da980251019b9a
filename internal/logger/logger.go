package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName    = "imdbplus.log"
	backupFileName = "imdbplus.bak"
)

// Logger wraps zerolog for application logging.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
	buffer  *Buffer
	logPath string
}

// Config holds logger configuration.
type Config struct {
	Level      string // name or legacy ordinal: 0=error, 1=warning, 2=info, 3=debug
	Format     string // "console" or "json"
	Path       string // directory for log files
	MaxSizeMB  int    // max size in MB before rotation (default: 10)
	MaxBackups int    // max number of old log files to keep (default: 1)
	MaxAgeDays int    // max age in days to keep old files (default: 30)
	Compress   bool
	BufferSize int // recent entries kept in memory, 0 disables
}

// New creates a new logger instance. An existing log file is moved to
// imdbplus.bak first, replacing the previous backup.
func New(cfg Config) *Logger {
	var consoleOutput io.Writer

	if cfg.Format == "json" {
		consoleOutput = os.Stdout
	} else {
		consoleOutput = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	writers := []io.Writer{consoleOutput}
	var rotator *lumberjack.Logger
	var logPath string
	var backupErr error

	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err == nil {
			logPath = filepath.Join(cfg.Path, logFileName)
			backupErr = backupPrevious(logPath, filepath.Join(cfg.Path, backupFileName))

			maxSize := cfg.MaxSizeMB
			if maxSize <= 0 {
				maxSize = 10
			}
			maxBackups := cfg.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 1
			}
			maxAge := cfg.MaxAgeDays
			if maxAge <= 0 {
				maxAge = 30
			}

			rotator = &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				MaxAge:     maxAge,
				Compress:   cfg.Compress,
				LocalTime:  true,
			}
			writers = append(writers, rotator)
		}
	}

	var buffer *Buffer
	if cfg.BufferSize > 0 {
		buffer = NewBuffer(cfg.BufferSize)
		writers = append(writers, buffer)
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	if backupErr != nil {
		logger.Error().Err(backupErr).Msg("Failed to move logfile to backup")
	}

	return &Logger{Logger: logger, rotator: rotator, buffer: buffer, logPath: logPath}
}

// backupPrevious moves the last run's log aside so each run starts with a fresh file.
func backupPrevious(logPath, backupPath string) error {
	if _, err := os.Stat(logPath); err != nil {
		return nil
	}
	if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(logPath, backupPath)
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// GetRecentLogs returns the buffered log entries, oldest first.
func (l *Logger) GetRecentLogs() []LogEntry {
	if l.buffer == nil {
		return nil
	}
	return l.buffer.Entries()
}

// GetLogFilePath returns the active log file, empty when logging to console only.
func (l *Logger) GetLogFilePath() string {
	return l.logPath
}

// SetBroadcastHub forwards new log entries to hub.
func (l *Logger) SetBroadcastHub(hub Broadcaster) {
	if l.buffer != nil {
		l.buffer.SetHub(hub)
	}
}

// ParseLevel converts a level name or legacy ordinal to a zerolog.Level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug", "3":
		return zerolog.DebugLevel
	case "info", "2":
		return zerolog.InfoLevel
	case "warn", "warning", "1":
		return zerolog.WarnLevel
	case "error", "0":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a new logger with component field.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:  l.Logger.With().Str("component", component).Logger(),
		buffer:  l.buffer,
		logPath: l.logPath,
	}
}
