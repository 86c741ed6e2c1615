package logger

import (
	"fmt"
	"log/slog"
)

const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

var levelNames = []struct {
	level slog.Level
	name  string
}{
	{LevelFatal, "FATAL"},
	{LevelPanic, "PANIC"},
	{LevelCritical, "CRITICAL"},
}

// levelAttrReplacer names the custom levels above ERROR.
func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != slog.LevelKey {
		return attr
	}
	l, ok := attr.Value.Any().(slog.Level)
	if !ok || l < LevelCritical {
		return attr
	}
	for _, n := range levelNames {
		if l >= n.level {
			name := n.name
			if d := l - n.level; d != 0 {
				name = fmt.Sprintf("%s%+d", name, d)
			}
			return slog.String(attr.Key, name)
		}
	}
	return attr
}
