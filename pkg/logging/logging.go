// Package logging provides levelled log helpers over the standard logger,
// optionally redirected to a size- and age-rotated file.
package logging

import (
	"io"
	"log"
	"sync"

	"github.com/natefinch/lumberjack"
)

// Config selects where log messages go.
type Config struct {
	Logfile string
	MaxSize int  `toml:"max_log_size"` // megabytes
	MaxAge  int  `toml:"max_log_age"`  // days
	Verbose bool `toml:"verbose"`
}

var (
	mu      sync.Mutex
	file    *lumberjack.Logger
	verbose bool
)

// SetLogger applies the configuration. With no log file, messages keep
// going to the standard logger's current output.
func (c *Config) SetLogger() {
	mu.Lock()
	defer mu.Unlock()

	if c == nil {
		return
	}
	verbose = c.Verbose
	if c.Logfile == "" {
		return
	}
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	log.SetOutput(l)
	file = l
}

// Shutdown closes the log file, if any, and sends later messages to w.
func Shutdown(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		log.SetOutput(w)
		file.Close()
		file = nil
	}
}

// Verbose reports whether Debugf messages are written.
func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// Debugf formats its arguments analogous to fmt.Printf and records the text
// at Debug level. It is dropped unless the configuration is verbose.
func Debugf(format string, args ...interface{}) {
	if !Verbose() {
		return
	}
	log.Printf(" DEBUG "+format, args...)
}

// Infof is like Debugf, but at Info level and always written.
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf is like Infof, but at Warning level.
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf is like Infof, but at Error level.
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}
