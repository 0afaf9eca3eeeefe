package src

import (
	"fmt"

	"workflowx/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:"LOG"`
	LLMConfig          model.LLMConfig          `envconfig:"LLM"`
	ClassifierConfig   model.ClassifierConfig   `envconfig:"CLASSIFIER"`
	ResolverConfig     model.ResolverConfig     `envconfig:"RESOLVER"`
	ZeroShotConfig     model.ZeroShotConfig     `envconfig:"ZERO_SHOT"`
	GoogleConfig       model.GoogleConfig       `envconfig:"GOOGLE"`
	SlackConfig        model.SlackConfig        `envconfig:"SLACK"`
	HubSpotConfig      model.HubSpotConfig      `envconfig:"HUBSPOT"`
	EmailConfig        model.EmailConfig        `envconfig:"EMAIL"`
	ServerConfig       model.ServerConfig       `envconfig:"SERVER"`
	RedisConfig        model.RedisConfig        `envconfig:"REDIS"`
	DialogConfig       model.DialogConfig       `envconfig:"DIALOG"`
	ConversationConfig model.ConversationConfig `envconfig:"CONVERSATION"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &config, nil
}
