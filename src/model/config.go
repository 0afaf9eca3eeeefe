package model

import "time"

// LogConfig configures the global zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info" yaml:"level"`
	Format     string `envconfig:"FORMAT" default:"json" yaml:"format"`
	Output     string `envconfig:"OUTPUT" default:"stdout" yaml:"output"`
	FilePath   string `envconfig:"FILE_PATH" default:"logs/workflowx.log" yaml:"file_path"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339" yaml:"time_format"`
}

type ServerConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080" yaml:"addr"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s" yaml:"read_timeout"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"*" yaml:"allowed_origins"`
}

// ResolverConfig configures date/time resolution
type ResolverConfig struct {
	TimeZone        string `envconfig:"TIME_ZONE" default:"America/Chicago" yaml:"time_zone"`
	DefaultHour     int    `envconfig:"DEFAULT_HOUR" default:"15" yaml:"default_hour"`
	RewriterEnabled bool   `envconfig:"REWRITER_ENABLED" default:"false" yaml:"rewriter_enabled"`
}

// ZeroShotConfig points at a hosted zero-shot NLI classifier
type ZeroShotConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"https://api-inference.huggingface.co" yaml:"base_url"`
	Model   string        `envconfig:"MODEL" default:"facebook/bart-large-mnli" yaml:"model"`
	Token   string        `envconfig:"TOKEN" yaml:"-"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s" yaml:"timeout"`
}

func (c ZeroShotConfig) Enabled() bool { return c.Token != "" && c.Model != "" }

// GoogleConfig holds OAuth credentials for Calendar and Gmail
type GoogleConfig struct {
	ClientID     string        `envconfig:"CLIENT_ID" yaml:"-"`
	ClientSecret string        `envconfig:"CLIENT_SECRET" yaml:"-"`
	RefreshToken string        `envconfig:"REFRESH_TOKEN" yaml:"-"`
	AccessToken  string        `envconfig:"ACCESS_TOKEN" yaml:"-"`
	CalendarID   string        `envconfig:"CALENDAR_ID" default:"primary" yaml:"calendar_id"`
	CalendarURL  string        `envconfig:"CALENDAR_URL" default:"https://www.googleapis.com/calendar/v3" yaml:"calendar_url"`
	GmailURL     string        `envconfig:"GMAIL_URL" default:"https://gmail.googleapis.com/gmail/v1" yaml:"gmail_url"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s" yaml:"timeout"`
}

func (c GoogleConfig) Enabled() bool {
	return c.AccessToken != "" || (c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "")
}

type SlackConfig struct {
	BotToken       string        `envconfig:"BOT_TOKEN" yaml:"-"`
	BaseURL        string        `envconfig:"BASE_URL" default:"https://slack.com/api" yaml:"base_url"`
	DefaultChannel string        `envconfig:"DEFAULT_CHANNEL" default:"#general" yaml:"default_channel"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"10s" yaml:"timeout"`
}

func (c SlackConfig) Enabled() bool { return c.BotToken != "" }

// HubSpotConfig selects the CRM. Backend "memory" uses a local contact directory.
type HubSpotConfig struct {
	Backend string        `envconfig:"BACKEND" default:"hubspot" yaml:"backend"`
	Token   string        `envconfig:"TOKEN" yaml:"-"`
	BaseURL string        `envconfig:"BASE_URL" default:"https://api.hubapi.com" yaml:"base_url"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s" yaml:"timeout"`
}

func (c HubSpotConfig) Enabled() bool { return c.Token != "" }

// EmailConfig holds defaults for outgoing mail. With SenderName set the
// email flow never asks who the message is from.
type EmailConfig struct {
	SenderName string `envconfig:"SENDER_NAME" yaml:"sender_name"`
}
