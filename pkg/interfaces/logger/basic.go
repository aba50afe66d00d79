package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Basic prints log lines to stderr. It is the default when a host wires the
// module without a real logger; production hosts should prefer adapters/zaplog.
type Basic struct {
	mu     *sync.Mutex
	fields []Field
}

var _ Logger = (*Basic)(nil)

// NewBasic returns a plain text logger writing to stderr.
func NewBasic() *Basic {
	return &Basic{mu: &sync.Mutex{}}
}

// With returns a logger that prefixes every line with the given fields.
func (l *Basic) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := &Basic{mu: l.mu}
	next.fields = append(append(next.fields, l.fields...), fields...)
	return next
}

func (l *Basic) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields) }
func (l *Basic) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields) }
func (l *Basic) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields) }
func (l *Basic) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields) }

func (l *Basic) log(level, msg string, fields []Field) {
	line := fmt.Sprintf("[%s] %s", level, msg)
	if rendered := render(l.fields, fields); rendered != "" {
		line += " " + rendered
	}
	l.mu.Lock()
	fmt.Fprintln(os.Stderr, line)
	l.mu.Unlock()
}

func render(bound, extra []Field) string {
	if len(bound)+len(extra) == 0 {
		return ""
	}
	parts := make([]string, 0, len(bound)+len(extra))
	for _, f := range bound {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	for _, f := range extra {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	return strings.Join(parts, " ")
}
