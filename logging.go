// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "go.uber.org/zap"

// nopLogger is the default logger for BuildConfig: builds stay silent
// unless a caller opts in with a real *zap.Logger,
// mirroring rudd's build-tag-gated _LOGLEVEL scheme but as a runtime value
// instead of a compile-time switch.
func nopLogger() *zap.Logger {
	return zap.NewNop()
}

// buildLogger is a small wrapper that adds a build identifier to every
// field logged during one Builder.Fit call.
type buildLogger struct {
	log *zap.Logger
}

func newBuildLogger(base *zap.Logger, buildID string) buildLogger {
	if base == nil {
		base = nopLogger()
	}
	return buildLogger{log: base.With(zap.String("build_id", buildID))}
}

func (l buildLogger) ordering(order []string, strategy string) {
	l.log.Debug("ordering chosen", zap.Strings("order", order), zap.String("strategy", strategy))
}

func (l buildLogger) compiled(method string, nodes, arcs, layers int) {
	l.log.Info("mdd compiled",
		zap.String("method", method),
		zap.Int("nodes", nodes),
		zap.Int("arcs", arcs),
		zap.Int("layers", layers),
	)
}

func (l buildLogger) reduced(before, after int) {
	l.log.Debug("reduction merged nodes", zap.Int("before", before), zap.Int("after", after))
}

func (l buildLogger) searchEval(eval int, score float64, best bool) {
	l.log.Debug("ordering search evaluation", zap.Int("eval", eval), zap.Float64("score", score), zap.Bool("improved", best))
}
