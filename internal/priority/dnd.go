package priority

import "github.com/nhle/toastcenter/internal/model"

// DND is the do-not-disturb policy.
type DND struct {
	Enabled   bool
	Threshold model.Priority
}

// NewDND builds a policy from config values. An unknown threshold falls
// back to High.
func NewDND(enabled bool, threshold string) DND {
	p, err := model.ParsePriority(threshold)
	if err != nil || p == model.PriorityNone {
		p = model.PriorityHigh
	}
	return DND{Enabled: enabled, Threshold: p}
}

// BreaksThrough reports whether a notification with priority p should be
// surfaced. With DND off everything is surfaced; with DND on, None never
// is and other priorities must reach the threshold.
func (d DND) BreaksThrough(p model.Priority) bool {
	if !d.Enabled {
		return true
	}
	if p == model.PriorityNone {
		return false
	}
	return p.Rank() >= d.Threshold.Rank()
}
