// Package ext2log is a leveled wrapper over the standard log package, used
// by the CLI tools for diagnostic output that must not pollute a command's
// stdout (reserved for the tools' own reports, such as dump's and check's).
// Grounded on
// akfs/internal/logger/logger.go.
package ext2log

import (
	"log"
	"sync"

	"github.com/AndrewH1995/EXT2-Ops/internal/ext2cfg"
)

var (
	level ext2cfg.LogLevel
	mu    sync.RWMutex
)

func SetLevel(l ext2cfg.LogLevel) {
	mu.Lock()
	level = l
	mu.Unlock()
}

func getLevel() ext2cfg.LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

func Debug(format string, args ...interface{}) {
	if getLevel() <= ext2cfg.LogLevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if getLevel() <= ext2cfg.LogLevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if getLevel() <= ext2cfg.LogLevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if getLevel() <= ext2cfg.LogLevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}
