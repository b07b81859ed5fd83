// Package priority classifies apps into notification priorities and decides
// which notifications may break through do-not-disturb.
package priority

import (
	"strings"

	"github.com/nhle/toastcenter/internal/model"
)

// highKeywords match security, system, real-time communication and
// financial apps.
var highKeywords = []string{
	// security
	"security", "defender", "antivirus", "firewall", "authenticator", "bitwarden",
	"1password", "keepass",
	// system
	"system", "windows update", "settings", "battery", "backup",
	// real-time communication
	"phone", "call", "whatsapp", "signal", "telegram", "messenger",
	// financial
	"bank", "wallet", "paypal", "venmo", "revolut", "stripe",
}

var highPublishers = []string{
	"microsoft windows",
	"bitdefender",
	"norton",
	"kaspersky",
	"mcafee",
}

// mediumKeywords match productivity, communication and browser apps.
var mediumKeywords = []string{
	"slack", "teams", "outlook", "mail", "calendar", "zoom", "discord",
	"skype", "webex", "office", "word", "excel", "powerpoint", "onenote",
	"notion", "todo", "jira", "github", "visual studio",
	"chrome", "edge", "firefox", "browser", "opera", "brave",
}

var mediumPublishers = []string{
	"microsoft corporation",
	"slack technologies",
	"google llc",
	"mozilla",
	"zoom video communications",
	"atlassian",
}

// Classify returns the heuristic priority for an app. High is checked
// before Medium and the first match wins; anything unmatched is Low.
func Classify(displayName, publisher string) model.Priority {
	name := strings.ToLower(displayName)
	pub := strings.ToLower(publisher)

	if matchesAny(name, pub, highKeywords) || matchesAny(name, pub, highPublishers) {
		return model.PriorityHigh
	}
	if matchesAny(name, pub, mediumKeywords) || matchesAny(name, pub, mediumPublishers) {
		return model.PriorityMedium
	}
	return model.PriorityLow
}

// Resolve picks the authoritative priority for an app: an enabled user
// override wins, then the heuristic. With no override and nothing to
// classify the result is None.
func Resolve(override *model.CustomPriorityApp, displayName, publisher string) model.Priority {
	if override != nil && override.IsEnabled {
		return override.Priority
	}
	if strings.TrimSpace(displayName) == "" && strings.TrimSpace(publisher) == "" {
		return model.PriorityNone
	}
	return Classify(displayName, publisher)
}

func matchesAny(name, publisher string, needles []string) bool {
	for _, n := range needles {
		if name != "" && strings.Contains(name, n) {
			return true
		}
		if publisher != "" && strings.Contains(publisher, n) {
			return true
		}
	}
	return false
}
