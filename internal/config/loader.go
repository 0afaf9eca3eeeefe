package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"workflowx/src"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of config.yaml. Zero values leave the
// environment setting untouched.
type YAMLConfig struct {
	Classifier struct {
		Labels            []string `yaml:"labels"`
		ZeroShotThreshold float64  `yaml:"zero_shot_threshold"`
		GenerativeEnabled *bool    `yaml:"generative_enabled"`
	} `yaml:"classifier"`
	Resolver struct {
		TimeZone        string `yaml:"time_zone"`
		DefaultHour     *int   `yaml:"default_hour"`
		RewriterEnabled *bool  `yaml:"rewriter_enabled"`
	} `yaml:"resolver"`
	Slack struct {
		DefaultChannel string `yaml:"default_channel"`
	} `yaml:"slack"`
	Email struct {
		SenderName string `yaml:"sender_name"`
	} `yaml:"email"`
	Dialog struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"dialog"`
	Conversation struct {
		MaxTurns int `yaml:"max_turns"`
	} `yaml:"conversation"`
}

// LoadConfig loads configuration from config.yaml. A missing file yields an
// empty YAMLConfig and no error.
func LoadConfig(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return &YAMLConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*YAMLConfig, error) {
	var config YAMLConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (y *YAMLConfig) validate() error {
	if t := y.Classifier.ZeroShotThreshold; t < 0 || t > 1 {
		return fmt.Errorf("classifier.zero_shot_threshold must be within [0,1], got %v", t)
	}
	if h := y.Resolver.DefaultHour; h != nil && (*h < 0 || *h > 23) {
		return fmt.Errorf("resolver.default_hour must be within [0,23], got %d", *h)
	}
	if y.Resolver.TimeZone != "" {
		if _, err := time.LoadLocation(y.Resolver.TimeZone); err != nil {
			return fmt.Errorf("resolver.time_zone: %w", err)
		}
	}
	if y.Dialog.TTL < 0 {
		return fmt.Errorf("dialog.ttl must not be negative")
	}
	return nil
}

// Apply merges the file values over the environment config
func (y *YAMLConfig) Apply(cfg *src.Config) {
	if len(y.Classifier.Labels) > 0 {
		cfg.ClassifierConfig.Labels = y.Classifier.Labels
	}
	if y.Classifier.ZeroShotThreshold > 0 {
		cfg.ClassifierConfig.ZeroShotThreshold = y.Classifier.ZeroShotThreshold
	}
	if y.Classifier.GenerativeEnabled != nil {
		cfg.ClassifierConfig.GenerativeEnabled = *y.Classifier.GenerativeEnabled
	}

	if y.Resolver.TimeZone != "" {
		cfg.ResolverConfig.TimeZone = y.Resolver.TimeZone
	}
	if y.Resolver.DefaultHour != nil {
		cfg.ResolverConfig.DefaultHour = *y.Resolver.DefaultHour
	}
	if y.Resolver.RewriterEnabled != nil {
		cfg.ResolverConfig.RewriterEnabled = *y.Resolver.RewriterEnabled
	}

	if y.Slack.DefaultChannel != "" {
		cfg.SlackConfig.DefaultChannel = y.Slack.DefaultChannel
	}
	if y.Email.SenderName != "" {
		cfg.EmailConfig.SenderName = y.Email.SenderName
	}
	if y.Dialog.TTL > 0 {
		cfg.DialogConfig.TTL = y.Dialog.TTL
	}
	if y.Conversation.MaxTurns > 0 {
		cfg.ConversationConfig.MaxTurns = y.Conversation.MaxTurns
	}
}
