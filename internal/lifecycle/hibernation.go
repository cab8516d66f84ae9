package lifecycle

import (
	"context"
	"time"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// HibernationManager decides when an idle instance is dormant and re-arms
// the coordinator when the host resumes one.
type HibernationManager struct {
	coordinator *Coordinator
	threshold   time.Duration

	// now is a test hook.
	now func() time.Time
}

// NewHibernationManager creates a manager with the given idle threshold.
// A non-positive threshold falls back to the operational default.
func NewHibernationManager(coordinator *Coordinator, threshold time.Duration) *HibernationManager {
	if threshold <= 0 {
		threshold = config.DefaultHibernationThreshold
	}
	return &HibernationManager{
		coordinator: coordinator,
		threshold:   threshold,
		now:         time.Now,
	}
}

// ShouldHibernate reports whether the instance has been idle past the
// threshold and may be captured and evicted by the host.
func (h *HibernationManager) ShouldHibernate() bool {
	return h.now().Sub(h.coordinator.LastActive()) > h.threshold
}

// WakeUp refreshes the activity timestamp after a resume. When the restored
// state claims an initialized backend but no live connection exists in this
// instance, it triggers exactly one re-initialization. A failure degrades
// into discovery mode exactly as a cold start would; WakeUp itself never
// surfaces it.
func (h *HibernationManager) WakeUp(ctx context.Context) {
	h.coordinator.Touch()

	state := h.coordinator.State()
	if !state.BackendInitialized {
		return
	}
	if _, ok := h.coordinator.Conn(); ok {
		return
	}

	_ = h.coordinator.EnsureInitialized(ctx, InitOptions{
		RequireAuth:    false,
		AllowDiscovery: true,
	})
}
