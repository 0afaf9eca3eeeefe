package model

import "time"

// LLMConfig selects and tunes the generative model used for classification
// fallback, message drafting and general chat.
type LLMConfig struct {
	Provider string        `envconfig:"PROVIDER" default:"openai" yaml:"provider"`
	Model    string        `envconfig:"MODEL" default:"gpt-4o-mini" yaml:"model"`
	APIKey   string        `envconfig:"API_KEY" yaml:"-"`
	BaseURL  string        `envconfig:"BASE_URL" yaml:"base_url"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"30s" yaml:"timeout"`

	ChatMaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"100" yaml:"chat_max_tokens"`
	ChatTemperature float64 `envconfig:"CHAT_TEMPERATURE" default:"0.7" yaml:"chat_temperature"`
	SystemPrompt    string  `envconfig:"SYSTEM_PROMPT" default:"You are a helpful AI assistant for WorkflowX." yaml:"system_prompt"`
}

// Enabled reports whether a generative model is configured
func (c LLMConfig) Enabled() bool {
	if c.Provider == "ollama" {
		return c.Model != ""
	}
	return c.APIKey != "" && c.Model != ""
}
