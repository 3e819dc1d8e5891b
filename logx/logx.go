/*
Copyright (C) 2026  SpinelDB Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package logx is the terse, one-line-per-event logger used across every
// component. No pack repo ships a structured logging library for its own
// core (only go.mod-only manifests mention zap/go-kit), so this wraps the
// standard library's log/slog instead of inventing a dependency.
package logx

import (
	"log/slog"
	"os"
)

var base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLevel adjusts the minimum emitted level at runtime (e.g. from INFO command).
func SetLevel(level slog.Level) {
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func Debug(msg string, kv ...any) { base.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { base.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { base.Warn(msg, kv...) }
func Error(msg string, kv ...any) { base.Error(msg, kv...) }

// With returns a logger scoped to a component, e.g. logx.With("component", "aof").
func With(kv ...any) *slog.Logger {
	return base.With(kv...)
}
