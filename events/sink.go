// Package events provides sinks for the pool engine's event feed: a
// structured-log sink, a fan-out broadcaster for stream consumers, and a
// multiplexer combining several sinks.
package events

import (
	"log/slog"

	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

// LogSink writes each event to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging every event at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(e cpmm.Event) {
	s.logger.Info("pool event", "type", e.EventType(), "event", e)
}

// MultiSink fans one event out to every sink in order.
type MultiSink []cpmm.Sink

func (m MultiSink) Publish(e cpmm.Event) {
	for _, s := range m {
		s.Publish(e)
	}
}
