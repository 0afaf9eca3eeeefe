package main

import (
	"context"
	"fmt"
	"strings"

	"workflowx/internal/config"
	"workflowx/internal/services"
	"workflowx/src"
	"workflowx/src/assistant"
	"workflowx/src/conversation"
	"workflowx/src/llm"
	"workflowx/src/logger"
	"workflowx/src/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// loadConfig reads .env, the environment and the optional YAML file, then
// initializes the global logger.
func loadConfig(path string) (*src.Config, error) {
	envErr := godotenv.Load()

	cfg, err := src.LoadConfig()
	if err != nil {
		return nil, err
	}
	yamlCfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	yamlCfg.Apply(cfg)

	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded")
	}
	return cfg, nil
}

// buildDeps constructs every collaborator that has credentials configured.
// Missing ones stay nil and their actions reply with a failure.
func buildDeps(ctx context.Context, cfg *src.Config) (assistant.Deps, error) {
	var deps assistant.Deps

	if cfg.LLMConfig.Enabled() {
		gen, err := llm.NewGenerator(ctx, cfg.LLMConfig)
		if err != nil {
			return deps, err
		}
		deps.Completer = gen
		logger.Info().Str("provider", cfg.LLMConfig.Provider).Str("model", cfg.LLMConfig.Model).Msg("generative model enabled")
	}

	if cfg.ZeroShotConfig.Enabled() {
		zs, err := services.NewZeroShotClient(cfg.ZeroShotConfig)
		if err != nil {
			return deps, err
		}
		deps.ZeroShot = zs
	}

	if cfg.GoogleConfig.Enabled() {
		hc, err := services.GoogleHTTPClient(ctx, cfg.GoogleConfig)
		if err != nil {
			return deps, err
		}
		deps.Calendar = services.NewCalendarClient(hc, cfg.GoogleConfig)
		gmail := services.NewGmailClient(hc, cfg.GoogleConfig)
		deps.Mailer = gmail
		deps.Inbox = gmail
	}

	if cfg.SlackConfig.Enabled() {
		slack, err := services.NewSlackClient(cfg.SlackConfig)
		if err != nil {
			return deps, err
		}
		deps.ChatPoster = slack
		deps.ChatHistory = slack
	}

	switch {
	case strings.EqualFold(cfg.HubSpotConfig.Backend, "memory"):
		deps.CRM = services.NewContactDirectory()
	case cfg.HubSpotConfig.Enabled():
		crm, err := services.NewHubSpotClient(cfg.HubSpotConfig)
		if err != nil {
			return deps, err
		}
		deps.CRM = crm
	}

	logger.Info().
		Bool("zero_shot", deps.ZeroShot != nil).
		Bool("calendar", deps.Calendar != nil).
		Bool("mail", deps.Mailer != nil).
		Bool("slack", deps.ChatPoster != nil).
		Bool("crm", deps.CRM != nil).
		Msg("collaborators configured")
	return deps, nil
}

func newAssistant(ctx context.Context, cfg *src.Config) (*assistant.Assistant, error) {
	deps, err := buildDeps(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return assistant.New(assistant.Config{
		Classifier:     cfg.ClassifierConfig,
		Resolver:       cfg.ResolverConfig,
		LLM:            cfg.LLMConfig,
		Email:          cfg.EmailConfig,
		DefaultChannel: cfg.SlackConfig.DefaultChannel,
	}, deps)
}

// stores holds the caller-side session state. client is nil without Redis.
type stores struct {
	client  *redis.Client
	dialogs storage.DialogStore
	redis   *storage.RedisDialogStore
	history *conversation.Service
}

func (s stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func buildStores(ctx context.Context, cfg *src.Config) (stores, error) {
	strategy := conversation.NewChatContextStrategy(cfg.ConversationConfig.MaxTurns)
	if cfg.RedisConfig.URL == "" {
		logger.Info().Msg("redis not configured, using in-memory session stores")
		return stores{
			dialogs: storage.NewMemoryDialogStore(cfg.DialogConfig),
			history: conversation.NewService(conversation.NewMemoryRepository(), strategy),
		}, nil
	}

	client, err := storage.Connect(ctx, cfg.RedisConfig)
	if err != nil {
		return stores{}, err
	}
	rds := storage.NewRedisDialogStore(client, cfg.DialogConfig)
	return stores{
		client:  client,
		dialogs: rds,
		redis:   rds,
		history: conversation.NewService(conversation.NewRedisRepository(client, cfg.ConversationConfig), strategy),
	}, nil
}
