package system

import (
	"time"

	coresys "github.com/Mandelbrottt/Yr2-Engine/internal/core/system"

	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end.
// Schedule it last.
type CleanupSystem struct {
	coresys.Base
	log *zap.Logger
}

func NewCleanupSystem(log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{log: log}
}

func (s *CleanupSystem) Name() string { return "cleanup" }

func (s *CleanupSystem) OnUpdate(_ time.Duration) {
	w := s.World()
	if w == nil {
		return
	}
	if n := w.FlushDestroyQueue(); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n))
	}
}
