package model

import "strings"

// ----------------------------------------------------
// ================ Config ================
// ClassifierConfig holds configuration for the intent classifier tiers
type ClassifierConfig struct {
	ZeroShotThreshold float64  `envconfig:"ZERO_SHOT_THRESHOLD" default:"0.5" yaml:"zero_shot_threshold"`
	GenerativeEnabled bool     `envconfig:"GENERATIVE_ENABLED" default:"true" yaml:"generative_enabled"`
	MaxTokens         int      `envconfig:"MAX_TOKENS" default:"5" yaml:"max_tokens"`
	Labels            []string `envconfig:"LABELS" yaml:"labels"`
}

// ----------------------------------------------------
// ================ Intent ================
// Intent is the closed set of labels the classifier can produce
type Intent string

const (
	IntentScheduleMeeting Intent = "schedule_meeting"
	IntentSendEmail       Intent = "send_email"
	IntentSendSlack       Intent = "send_slack"
	IntentRetrieveSlack   Intent = "retrieve_slack"
	IntentRetrieveEmail   Intent = "retrieve_email"
	IntentCreateCRM       Intent = "create_crm"
	IntentUpdateCRM       Intent = "update_crm"
	IntentRetrieveCRM     Intent = "retrieve_crm"
	IntentGeneral         Intent = "general"
)

var allIntents = []Intent{
	IntentScheduleMeeting,
	IntentSendEmail,
	IntentSendSlack,
	IntentRetrieveSlack,
	IntentRetrieveEmail,
	IntentCreateCRM,
	IntentUpdateCRM,
	IntentRetrieveCRM,
	IntentGeneral,
}

// Intents returns every valid intent label in a stable order
func Intents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

// ParseIntent maps a label onto the closed intent set.
func ParseIntent(label string) (Intent, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, in := range allIntents {
		if string(in) == label {
			return in, true
		}
	}
	return "", false
}

func (i Intent) String() string {
	return string(i)
}

// ----------------------------------------------------
// ================ Response ================
// LabelScore is one candidate label returned by a zero-shot classifier
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
