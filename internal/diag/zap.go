package diag

import "go.uber.org/zap"

// ZapSink adapts a zap logger to the Sink interface.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink backed by the given zap logger.
// A nil logger yields a sink that discards everything.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

// Report logs the diagnostic at the corresponding zap level.
func (s *ZapSink) Report(level Level, kind Kind, msg string, fields ...Field) {
	zfields := make([]zap.Field, 0, len(fields)+1)
	zfields = append(zfields, zap.String("kind", string(kind)))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			zfields = append(zfields, zap.Error(err))
			continue
		}
		zfields = append(zfields, zap.Any(f.Key, f.Value))
	}

	switch level {
	case LevelDebug:
		s.logger.Debug(msg, zfields...)
	case LevelWarn:
		s.logger.Warn(msg, zfields...)
	case LevelError:
		s.logger.Error(msg, zfields...)
	default:
		s.logger.Info(msg, zfields...)
	}
}
