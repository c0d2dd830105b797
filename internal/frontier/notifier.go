package frontier

import (
	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/metrics"
)

// NotifyConfig controls which newly confirmed IDs produce a log line.
type NotifyConfig struct {
	// StopAt is the target ID; 0 means no target is configured.
	StopAt item.ID
	// SwitchAtLeft switches to per-item countdown lines once the remaining
	// distance to StopAt drops to this value or below.
	SwitchAtLeft item.ID
	// Every emits a line for every Every-th ID outside countdown range.
	Every item.ID
	// AlwaysPerItem forces a line for every confirmed ID.
	AlwaysPerItem bool
}

// LogNotifier derives whether and what to log for each newly confirmed ID.
type LogNotifier struct {
	cfg    NotifyConfig
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(cfg NotifyConfig, logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{cfg: cfg, logger: logger}
}

// Notify logs the newly confirmed ID according to the countdown/periodic
// policy. With a target configured the countdown fires every time once the
// remaining distance is within SwitchAtLeft (or always-notify is on);
// otherwise only every Every-th ID is logged.
func (n *LogNotifier) Notify(id item.ID) {
	if n.cfg.StopAt > 0 {
		var left item.ID
		if n.cfg.StopAt > id {
			left = n.cfg.StopAt - id
		}
		if n.cfg.AlwaysPerItem || left <= n.cfg.SwitchAtLeft {
			n.logger.Info("new item confirmed",
				zap.Stringer("item_id", id),
				zap.Stringer("left_to_target", left),
				zap.Stringer("target", n.cfg.StopAt),
			)
			metrics.IncNotification()
			return
		}
		if n.cfg.Every > 0 && id%n.cfg.Every == 0 {
			n.logger.Info("new item confirmed",
				zap.Stringer("item_id", id),
				zap.Stringer("left_to_target", left),
			)
			metrics.IncNotification()
		}
		return
	}

	if n.cfg.AlwaysPerItem || (n.cfg.Every > 0 && id%n.cfg.Every == 0) {
		n.logger.Info("new item confirmed", zap.Stringer("item_id", id))
		metrics.IncNotification()
	}
}
