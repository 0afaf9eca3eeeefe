package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"workflowx/src/metrics"
	"workflowx/src/model"

	"github.com/go-resty/resty/v2"
)

// ErrChannelNotFound is returned when a channel name does not resolve
var ErrChannelNotFound = errors.New("slack channel not found")

// SlackClient posts to and reads from Slack channels with a bot token
type SlackClient struct {
	client *resty.Client
}

func NewSlackClient(cfg model.SlackConfig) (*SlackClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("slack: %w", ErrNotConfigured)
	}
	c := newClient(cfg.BaseURL, cfg.Timeout).SetAuthToken(cfg.BotToken)
	return &SlackClient{client: c}, nil
}

type slackStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type slackPost struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type slackChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type slackChannels struct {
	slackStatus
	Channels []slackChannel `json:"channels"`
	Metadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type slackMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	TS   string `json:"ts"`
}

type slackHistory struct {
	slackStatus
	Messages []slackMessage `json:"messages"`
}

// Slack answers 200 for API errors and reports them in the body
func slackErr(method string, s slackStatus) error {
	if s.OK {
		return nil
	}
	if s.Error == "channel_not_found" {
		return fmt.Errorf("slack %s: %w", method, ErrChannelNotFound)
	}
	return fmt.Errorf("slack %s: %s", method, s.Error)
}

func (s *SlackClient) PostMessage(ctx context.Context, channel, text string) error {
	defer metrics.ObserveSince("slack", time.Now())

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(slackPost{Channel: channel, Text: text}).
		SetResult(&slackStatus{}).
		Post("/chat.postMessage")
	if err := check("slack", resp, err); err != nil {
		return err
	}
	return slackErr("chat.postMessage", *resp.Result().(*slackStatus))
}

// SupportsSearch reports that GetMessages filters by search term
func (s *SlackClient) SupportsSearch() bool { return true }

const searchWindow = 200

// GetMessages returns up to limit recent messages from the channel. With a
// search term the most recent page is filtered case-insensitively.
func (s *SlackClient) GetMessages(ctx context.Context, channel string, limit int, search string) ([]model.ChatMessage, error) {
	defer metrics.ObserveSince("slack", time.Now())

	id, err := s.channelID(ctx, channel)
	if err != nil {
		return nil, err
	}

	fetch := limit
	if search != "" {
		fetch = searchWindow
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"channel": id, "limit": strconv.Itoa(fetch)}).
		SetResult(&slackHistory{}).
		Get("/conversations.history")
	if err := check("slack", resp, err); err != nil {
		return nil, err
	}
	hist := resp.Result().(*slackHistory)
	if err := slackErr("conversations.history", hist.slackStatus); err != nil {
		return nil, err
	}

	needle := strings.ToLower(search)
	out := make([]model.ChatMessage, 0, limit)
	for _, m := range hist.Messages {
		if needle != "" && !strings.Contains(strings.ToLower(m.Text), needle) {
			continue
		}
		out = append(out, model.ChatMessage{User: m.User, Text: m.Text, Timestamp: parseTS(m.TS)})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var channelIDRe = regexp.MustCompile(`^[CGD][A-Z0-9]{6,}$`)

func (s *SlackClient) channelID(ctx context.Context, channel string) (string, error) {
	if channelIDRe.MatchString(channel) {
		return channel, nil
	}
	name := strings.ToLower(strings.TrimPrefix(channel, "#"))

	cursor := ""
	for {
		params := map[string]string{"types": "public_channel,private_channel", "limit": "1000", "exclude_archived": "true"}
		if cursor != "" {
			params["cursor"] = cursor
		}
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(&slackChannels{}).
			Get("/conversations.list")
		if err := check("slack", resp, err); err != nil {
			return "", err
		}
		list := resp.Result().(*slackChannels)
		if err := slackErr("conversations.list", list.slackStatus); err != nil {
			return "", err
		}
		for _, c := range list.Channels {
			if strings.ToLower(c.Name) == name {
				return c.ID, nil
			}
		}
		if list.Metadata.NextCursor == "" {
			return "", fmt.Errorf("slack %s: %w", channel, ErrChannelNotFound)
		}
		cursor = list.Metadata.NextCursor
	}
}

func parseTS(ts string) time.Time {
	sec, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var ns int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		ns, _ = strconv.ParseInt(frac, 10, 64)
	}
	return time.Unix(s, ns)
}
