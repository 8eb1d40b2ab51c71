// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin facade over go-ethereum's logger, so packages can
// carry a per-package context without depending on the backend directly.
package log

import (
	"io"
	"log/slog"
	"os"

	gethlog "github.com/ethereum/go-ethereum/log"
)

// Logger is the handler-based logger interface.
type Logger = gethlog.Logger

var root = gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false))

// WithContext returns a logger carrying the given context key/value pairs.
func WithContext(ctx ...any) Logger {
	return root.New(ctx...)
}

// SetVerbosity sets the level of the root logger and all loggers derived from it.
func SetVerbosity(level slog.Level) {
	root = gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(os.Stderr, level, false))
}

// SetOutput redirects the root logger, mainly for tests.
func SetOutput(w io.Writer, level slog.Level) {
	root = gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(w, level, false))
}

// Debug logs at debug level with the root logger.
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }

// Info logs at info level with the root logger.
func Info(msg string, ctx ...any) { root.Info(msg, ctx...) }

// Warn logs at warn level with the root logger.
func Warn(msg string, ctx ...any) { root.Warn(msg, ctx...) }

// Error logs at error level with the root logger.
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
