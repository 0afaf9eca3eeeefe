package services

import (
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"workflowx/src/metrics"
	"workflowx/src/model"

	"github.com/go-resty/resty/v2"
)

// GmailClient sends mail as, and reads the inbox of, the authorised user
type GmailClient struct {
	client *resty.Client
}

func NewGmailClient(httpClient *http.Client, cfg model.GoogleConfig) *GmailClient {
	return &GmailClient{client: newClientWith(resty.NewWithClient(httpClient), cfg.GmailURL, cfg.Timeout)}
}

type gmailRaw struct {
	Raw string `json:"raw"`
}

type gmailRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type gmailList struct {
	Messages []gmailRef `json:"messages"`
}

type gmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type gmailBody struct {
	Data string `json:"data"`
}

type gmailPart struct {
	MimeType string        `json:"mimeType"`
	Headers  []gmailHeader `json:"headers"`
	Body     gmailBody     `json:"body"`
	Parts    []gmailPart   `json:"parts"`
}

type gmailMessage struct {
	ID      string    `json:"id"`
	Snippet string    `json:"snippet"`
	Payload gmailPart `json:"payload"`
}

// Send delivers a plain-text message and returns the Gmail message id
func (g *GmailClient) Send(ctx context.Context, to, subject, body string) (string, error) {
	defer metrics.ObserveSince("gmail", time.Now())

	raw := base64.URLEncoding.EncodeToString(buildMIME(to, subject, body))
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(gmailRaw{Raw: raw}).
		SetResult(&gmailRef{}).
		Post("/users/me/messages/send")
	if err := check("gmail", resp, err); err != nil {
		return "", err
	}
	return resp.Result().(*gmailRef).ID, nil
}

func buildMIME(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// ListRecent returns up to limit inbox messages, newest first
func (g *GmailClient) ListRecent(ctx context.Context, limit int) ([]model.EmailMessage, error) {
	defer metrics.ObserveSince("gmail", time.Now())

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"labelIds":   "INBOX",
			"maxResults": strconv.Itoa(limit),
		}).
		SetResult(&gmailList{}).
		Get("/users/me/messages")
	if err := check("gmail", resp, err); err != nil {
		return nil, err
	}

	refs := resp.Result().(*gmailList).Messages
	out := make([]model.EmailMessage, 0, len(refs))
	for _, ref := range refs {
		msg, err := g.get(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (g *GmailClient) get(ctx context.Context, id string) (model.EmailMessage, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("format", "full").
		SetResult(&gmailMessage{}).
		Get("/users/me/messages/" + id)
	if err := check("gmail", resp, err); err != nil {
		return model.EmailMessage{}, err
	}

	m := resp.Result().(*gmailMessage)
	out := model.EmailMessage{ID: m.ID, Snippet: m.Snippet, Body: plainText(m.Payload)}
	for _, h := range m.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			out.From = h.Value
		case "subject":
			out.Subject = h.Value
		case "date":
			out.Date = h.Value
		}
	}
	return out, nil
}

// plainText finds the first text/plain body in a payload tree
func plainText(p gmailPart) string {
	if len(p.Parts) == 0 {
		if p.MimeType != "" && !strings.HasPrefix(p.MimeType, "text/plain") {
			return ""
		}
		return decodeBody(p.Body.Data)
	}
	for _, part := range p.Parts {
		if text := plainText(part); text != "" {
			return text
		}
	}
	return ""
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(raw)
}

