package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/toastcenter/internal/model"
)

func TestNewDNDThresholdFallback(t *testing.T) {
	assert.Equal(t, model.PriorityMedium, NewDND(true, "Medium").Threshold)
	assert.Equal(t, model.PriorityHigh, NewDND(true, "bogus").Threshold)
	assert.Equal(t, model.PriorityHigh, NewDND(true, "none").Threshold)
}

func TestBreaksThrough(t *testing.T) {
	tests := []struct {
		name string
		dnd  DND
		p    model.Priority
		want bool
	}{
		{"off surfaces low", DND{Enabled: false, Threshold: model.PriorityHigh}, model.PriorityLow, true},
		{"off surfaces none", DND{Enabled: false, Threshold: model.PriorityHigh}, model.PriorityNone, true},
		{"on high threshold high", DND{Enabled: true, Threshold: model.PriorityHigh}, model.PriorityHigh, true},
		{"on high threshold medium", DND{Enabled: true, Threshold: model.PriorityHigh}, model.PriorityMedium, false},
		{"on medium threshold medium", DND{Enabled: true, Threshold: model.PriorityMedium}, model.PriorityMedium, true},
		{"on low threshold low", DND{Enabled: true, Threshold: model.PriorityLow}, model.PriorityLow, true},
		{"on never none", DND{Enabled: true, Threshold: model.PriorityLow}, model.PriorityNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dnd.BreaksThrough(tt.p))
		})
	}
}
