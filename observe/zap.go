package observe

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a *zap.Logger to Logger.
type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps l. Redacted fields are replaced before they reach zap.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

// buildZap creates a JSON zap logger using the same keys as the default
// structured logger.
func buildZap(level string, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(enc),
		zapcore.Lock(zapcore.AddSync(w)),
		zapLevel(ParseLogLevel(level)),
	)
	return zap.New(core)
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *zapLogger) WithFunc(meta FuncMeta) Logger {
	fields := []zap.Field{
		zap.String("func.id", meta.FuncID()),
		zap.String("func.name", meta.Name),
	}
	if meta.Namespace != "" {
		fields = append(fields, zap.String("func.namespace", meta.Namespace))
	}
	if meta.Version != "" {
		fields = append(fields, zap.String("func.version", meta.Version))
	}
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) Info(_ context.Context, msg string, fields ...Field) {
	z.l.Info(msg, zapFields(fields)...)
}

func (z *zapLogger) Warn(_ context.Context, msg string, fields ...Field) {
	z.l.Warn(msg, zapFields(fields)...)
}

func (z *zapLogger) Error(_ context.Context, msg string, fields ...Field) {
	z.l.Error(msg, zapFields(fields)...)
}

func (z *zapLogger) Debug(_ context.Context, msg string, fields ...Field) {
	z.l.Debug(msg, zapFields(fields)...)
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if isRedactedField(f.Key) {
			out = append(out, zap.String(f.Key, redacted))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// isSyncUnsupported reports the errors returned when syncing a terminal or
// pipe, which have nothing to flush.
func isSyncUnsupported(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}

// Ensure zapLogger implements Logger
var _ Logger = (*zapLogger)(nil)
