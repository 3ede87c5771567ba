// Package archivist is the engine's leveled logger. It is a direct
// descendant of the logging package carried by every subsystem of the
// engine's Go teacher: five coarse log levels, five granular debug
// verbosity levels, and a pluggable sink so callers can redirect output
// without the engine depending on any particular logging library.
package archivist

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kalluancartoon/ikin-expert/src/system/interfaces"
)

// Coarse log levels. SetLogLevel(n) enables n and every level above it.
const (
	LEVEL_DEBUG = iota + 1
	LEVEL_INFO
	LEVEL_WARNING
	LEVEL_ERROR
	LEVEL_FATAL
)

// Granular debug verbosity, only consulted when LEVEL_DEBUG is enabled.
const (
	DEBUG_LEVEL_TRACE = iota + 1
	DEBUG_LEVEL_INFO
	DEBUG_LEVEL_DETAIL
	DEBUG_LEVEL_DUMP
	DEBUG_LEVEL_MAX
)

var levelNames = [5]string{"debug", "info", "warning", "error", "fatal"}

// Archivist is the engine's structured logger. Zero value is not usable;
// construct with New.
type Archivist struct {
	logFlags   [5]bool
	logger     interfaces.LoggerInterface
	debugLevel int
}

// Config carries the construction-time knobs for an Archivist.
type Config struct {
	Logger     interfaces.LoggerInterface
	LogLevel   int
	DebugLevel int
}

// New builds an Archivist from conf. A nil Logger defaults to stdout.
func New(conf *Config) *Archivist {
	a := &Archivist{}
	a.SetLogger(conf.Logger)
	a.SetLogLevel(conf.LogLevel)
	if conf.LogLevel == LEVEL_DEBUG {
		a.SetDebugLevel(conf.DebugLevel)
	}
	return a
}

// emit renders one log line and hands it to the sink, if the level is enabled.
func (a *Archivist) emit(level int, message string, formatted bool, params []interface{}) {
	if !a.logFlags[level-1] {
		return
	}
	_, file, line, _ := runtime.Caller(2)
	parts := strings.Split(file, "/")
	caller := parts[len(parts)-1]

	logLine := time.Now().Format("2006-01-02 15:04:05") + "|" + levelNames[level-1] + "|" + caller + "#" + strconv.Itoa(line) + "|"
	switch {
	case len(params) == 0:
		logLine += message
	case formatted:
		logLine += fmt.Sprintf(message, params...)
	default:
		logLine += message + "|" + fmt.Sprintf("%+v", params)
	}
	a.logger.Println(logLine)
}

func (a *Archivist) Error(message string, params ...interface{})   { a.emit(LEVEL_ERROR, message, false, params) }
func (a *Archivist) ErrorF(message string, params ...interface{})  { a.emit(LEVEL_ERROR, message, true, params) }
func (a *Archivist) Fatal(message string, params ...interface{})   { a.emit(LEVEL_FATAL, message, false, params) }
func (a *Archivist) FatalF(message string, params ...interface{})  { a.emit(LEVEL_FATAL, message, true, params) }
func (a *Archivist) Info(message string, params ...interface{})    { a.emit(LEVEL_INFO, message, false, params) }
func (a *Archivist) InfoF(message string, params ...interface{})   { a.emit(LEVEL_INFO, message, true, params) }
func (a *Archivist) Warning(message string, params ...interface{}) { a.emit(LEVEL_WARNING, message, false, params) }
func (a *Archivist) WarningF(message string, params ...interface{}) {
	a.emit(LEVEL_WARNING, message, true, params)
}

// Debug logs at LEVEL_DEBUG, further gated by the granular debugLevel: level
// must be <= the configured DebugLevel to be emitted.
func (a *Archivist) Debug(level int, message string, params ...interface{}) {
	if level > a.debugLevel {
		return
	}
	a.emit(LEVEL_DEBUG, message, false, params)
}

func (a *Archivist) DebugF(level int, message string, params ...interface{}) {
	if level > a.debugLevel {
		return
	}
	a.emit(LEVEL_DEBUG, message, true, params)
}

// SetLogLevel enables level and every level above it; an unrecognized value
// falls back to LEVEL_WARNING.
func (a *Archivist) SetLogLevel(level int) {
	if level == 0 {
		level = LEVEL_WARNING
	}
	if level < LEVEL_DEBUG || level > LEVEL_FATAL {
		a.Error("unknown log level %d, defaulting to LEVEL_WARNING", level)
		level = LEVEL_WARNING
	}
	for i := range a.logFlags {
		a.logFlags[i] = level-1 <= i
	}
}

// SetDebugLevel clamps level to a non-negative granular verbosity.
func (a *Archivist) SetDebugLevel(level int) {
	if level < 0 {
		level = 0
	}
	a.debugLevel = level
}

// SetLogger swaps the log sink; nil resets it to stdout.
func (a *Archivist) SetLogger(logger interfaces.LoggerInterface) {
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}
	a.logger = logger
}
