package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
	color  bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleHandler{writer: w, level: lvl, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(128)
	buf.WriteString(timestamp.Format("15:04:05"))
	buf.WriteByte(' ')
	h.writeLevel(&buf, record.Level)
	buf.WriteByte(' ')
	buf.WriteString(record.Message)

	writeAttr := func(key string, value slog.Value) {
		buf.WriteByte(' ')
		if h.color {
			buf.WriteString(ansiDim)
		}
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(attrValue(value))
		if h.color {
			buf.WriteString(ansiReset)
		}
	}
	// Bound attrs carry their group prefix already (applied in WithAttrs).
	for _, attr := range h.attrs {
		writeAttr(attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Equal(slog.Attr{}) {
			return true
		}
		writeAttr(h.attrKey(attr.Key), attr.Value)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		groups: h.groups,
	}
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.attrKey(attr.Key), Value: attr.Value})
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		attrs:  h.attrs,
	}
	clone.groups = append(append([]string{}, h.groups...), name)
	return clone
}

func (h *consoleHandler) attrKey(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func (h *consoleHandler) writeLevel(buf *bytes.Buffer, level slog.Level) {
	label := "INFO "
	color := ansiBlue
	switch {
	case level >= slog.LevelError:
		label = "ERROR"
		color = ansiRed
	case level >= slog.LevelWarn:
		label = "WARN "
		color = ansiYellow
	case level < slog.LevelInfo:
		label = "DEBUG"
		color = ansiDim
	}
	if h.color {
		buf.WriteString(color)
		buf.WriteString(label)
		buf.WriteString(ansiReset)
		return
	}
	buf.WriteString(label)
}

func attrValue(value slog.Value) string {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		text := value.String()
		if strings.ContainsAny(text, " \t") {
			return strconv.Quote(text)
		}
		return text
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	default:
		return fmt.Sprint(value.Any())
	}
}
