// Package logger wraps logrus the way the teacher's pkg/logger and
// infrastructure/logging packages do: a small constructor over
// level/format configuration, plus trace-context propagation for the
// request-scoped fields every orchestrator call wants to carry (domain,
// operation, record id).
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ContextKey namespaces values this package stores on a context.Context.
type ContextKey string

// TraceIDKey is the context key for a correlation id threaded through an
// orchestrator fan-out call.
const TraceIDKey ContextKey = "trace_id"

// Logger wraps *logrus.Logger with the service name baked into every
// entry.
type Logger struct {
	*logrus.Logger
	service string
}

// Config controls level/format/output, mirroring pkg/config's
// LoggingConfig section (spec §3 ambient stack).
type Config struct {
	Service string
	Level   string
	Format  string
	Output  string
}

// New builds a Logger from Config. Unparseable levels default to info,
// matching the teacher's fail-open behavior.
func New(cfg Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	l.SetOutput(out)

	return &Logger{Logger: l, service: cfg.Service}
}

// Discard returns a Logger that drops everything, used as the nil-safe
// default every evaluator falls back to when constructed without one.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l, service: "discard"}
}

// WithContext attaches the service name and any trace id found on ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{"service": l.service}
	if ctx != nil {
		if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
			fields["trace_id"] = tid
		}
	}
	return l.Logger.WithFields(fields)
}

// Op returns an entry scoped to a single evaluator operation, the
// granularity every orchestrator and evaluator logs at in this module.
func (l *Logger) Op(domain, operation string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"service":   l.service,
		"domain":    domain,
		"operation": operation,
	})
}
