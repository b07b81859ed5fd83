package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/toastcenter/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		publisher   string
		want        model.Priority
	}{
		{"security app", "Windows Security", "Microsoft Corporation", model.PriorityHigh},
		{"unknown game", "Solitaire", "Unknown Publisher", model.PriorityLow},
		{"chat app", "Slack", "Slack Technologies", model.PriorityMedium},
		{"high publisher only", "Scanner", "Kaspersky Lab", model.PriorityHigh},
		{"medium publisher only", "Widget", "Google LLC", model.PriorityMedium},
		{"case insensitive", "MY BANK", "", model.PriorityHigh},
		{"high wins over medium", "Outlook Security Center", "", model.PriorityHigh},
		{"empty strings", "", "", model.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.displayName, tt.publisher))
		})
	}
}

func TestResolve(t *testing.T) {
	enabled := &model.CustomPriorityApp{Priority: model.PriorityLow, IsEnabled: true}
	disabled := &model.CustomPriorityApp{Priority: model.PriorityLow, IsEnabled: false}

	assert.Equal(t, model.PriorityLow, Resolve(enabled, "Windows Security", ""))
	assert.Equal(t, model.PriorityHigh, Resolve(disabled, "Windows Security", ""))
	assert.Equal(t, model.PriorityMedium, Resolve(nil, "Slack", ""))
	assert.Equal(t, model.PriorityNone, Resolve(nil, " ", ""))
}
