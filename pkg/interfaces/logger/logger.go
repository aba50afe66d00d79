package logger

// Field is a structured logging key/value pair.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field inline.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the minimal contract expected by go-attribution components.
// Implementations may forward to zap, logrus, slog, etc. See adapters/zaplog.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Nop discards every log line. Components default to it when no logger is
// injected so logging never becomes a nil check at call sites.
type Nop struct{}

var _ Logger = (*Nop)(nil)

func (n *Nop) With(fields ...Field) Logger       { return n }
func (n *Nop) Debug(msg string, fields ...Field) {}
func (n *Nop) Info(msg string, fields ...Field)  {}
func (n *Nop) Warn(msg string, fields ...Field)  {}
func (n *Nop) Error(msg string, fields ...Field) {}
