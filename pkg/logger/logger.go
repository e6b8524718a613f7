package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// ParseLevel парсит уровень из конфигурации ("debug", "info", "warn", "error")
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger пишет сообщения в stdout и (опционально) в файл
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
	file  *os.File
}

// New создает логгер. Если path пустой, логи пишутся только в stdout.
func New(path string, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		writer io.Writer = os.Stdout
		file   *os.File
	)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writer = io.MultiWriter(os.Stdout, file)
	}

	return &Logger{
		level: lvl,
		out:   log.New(writer, "", log.LstdFlags|log.Lmicroseconds),
		file:  file,
	}, nil
}

// NewWithWriter создает логгер поверх произвольного writer (используется в тестах)
func NewWithWriter(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", 0),
	}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.write(LevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.write(LevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.write(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.write(LevelError, format, v...) }

// Fatal пишет сообщение и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.write(LevelFatal, format, v...)
	l.Close()
	os.Exit(1)
}

// Close закрывает файл логов
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("[%s] %s", levelNames[level], fmt.Sprintf(format, v...))
}

// Nop логгер, который ничего не пишет
type Nop struct{}

func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
