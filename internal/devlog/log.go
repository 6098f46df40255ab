// Package devlog provides a small leveled logger for buddyd, modeled on
// the prefix-tagged, io.Writer-based loggers used throughout the examples
// this project learns from: no structured fields, no third-party logging
// backend, just prefixed lines and an env-controlled level. The allocator
// core (pkg/pool, pkg/tree, pkg/alloc, pkg/gate) never imports this
// package; only cmd/buddyd, the carriers and the stats reporter do.
package devlog

import (
	"fmt"
	"io"
	"os"
)

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrorWriter io.Writer = os.Stderr
)

const (
	debugPrefix = "[DEBUG]"
	infoPrefix  = "[INFO]"
	warnPrefix  = "[WARN]"
	errPrefix   = "[ERROR]"
)

func init() {
	lvl, ok := os.LookupEnv("BUDDYD_LOGLEVEL")
	if !ok {
		return
	}
	switch lvl {
	case "error", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing to silence
	default:
		Warnf("devlog: unrecognized BUDDYD_LOGLEVEL %q, ignoring", lvl)
	}
}

func Debugf(format string, v ...interface{}) {
	if DebugWriter != io.Discard {
		fmt.Fprintf(DebugWriter, debugPrefix+" "+format+"\n", v...)
	}
}

func Infof(format string, v ...interface{}) {
	if InfoWriter != io.Discard {
		fmt.Fprintf(InfoWriter, infoPrefix+" "+format+"\n", v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if WarnWriter != io.Discard {
		fmt.Fprintf(WarnWriter, warnPrefix+" "+format+"\n", v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if ErrorWriter != io.Discard {
		fmt.Fprintf(ErrorWriter, errPrefix+" "+format+"\n", v...)
	}
}
