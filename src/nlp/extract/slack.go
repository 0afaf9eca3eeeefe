package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"workflowx/src/llm"
	"workflowx/src/logger"
	"workflowx/src/model"
	"workflowx/src/nlp/normalize"
)

const (
	DefaultChannel    = "#general"
	DefaultSlackLimit = 5
	MaxSlackLimit     = 20
)

var (
	hashChannelRe = regexp.MustCompile(`#([A-Za-z0-9][\w\-]*)`)
	channelRefRe  = regexp.MustCompile(`(?i)(?:\s+(?:in|on|to|into|at)(?:\s+the)?)?\s*#[A-Za-z0-9][\w\-]*`)

	// phrase forms tried in order when there is no #channel token
	channelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:to|in|on|into|at|from|of)\s+(?:the\s+)?([A-Za-z0-9][\w\-]*)\s+channel\b`),
		regexp.MustCompile(`(?i)\bchannel\s+(?:called\s+|named\s+)?([A-Za-z0-9][\w\-]*)`),
		regexp.MustCompile(`(?i)\b(?:to|in|on|into|tell|ask|notify)\s+(?:the\s+)?([A-Za-z0-9][\w\-]*)\s+(?:team|group|room)\b`),
		regexp.MustCompile(`(?i)\b(?:post|send|message|tell|ask|notify)\s+(?:to\s+)?(?:the\s+)?([A-Za-z0-9][\w\-]*)\s+(?:that|saying|to)\b`),
	}

	notChannels = map[string]bool{
		"message": true, "messages": true, "channel": true, "team": true, "slack": true,
		"the": true, "a": true, "an": true, "everyone": true, "everybody": true, "them": true,
		"him": true, "her": true, "me": true, "us": true, "it": true, "this": true, "that": true,
		"say": true, "saying": true, "tell": true, "all": true, "people": true, "folks": true,
		"my": true, "our": true, "new": true, "latest": true, "last": true, "recent": true,
	}

	messagePatterns = []struct {
		re     *regexp.Regexp
		format func(string) string
	}{
		{regexp.MustCompile(`(?i)\b(?:saying|that\s+says|which\s+says|with\s+(?:the\s+)?message|message\s*:|text\s*:)\s*(.+)$`), capitalize},
		{regexp.MustCompile(`(?i)\bask\s+(?:them|everyone|everybody|the\s+team|people|folks|him|her|all)?\s*(?:to\s+)(.+)$`), askFormat},
		{regexp.MustCompile(`(?i)\b(?:that|about)\s+(.+)$`), capitalize},
		{regexp.MustCompile(`(?i)\btell\s+(?:them|everyone|everybody|the\s+team|people|folks|him|her|all)?\s*(.+)$`), capitalize},
	}

	genericMessages = map[string]bool{
		"it": true, "this": true, "that": true, "something": true, "hi": true, "hello": true,
		"a message": true, "message": true, "an update": true, "update": true, "them": true,
	}
)

func askFormat(s string) string {
	s = strings.TrimRight(s, ".!? ")
	return "Could you " + s + "?"
}

// SlackExtractor finds the channel and message text of a send_slack request
type SlackExtractor struct {
	completer      llm.Completer
	defaultChannel string
}

func NewSlackExtractor(c llm.Completer, defaultChannel string) *SlackExtractor {
	if defaultChannel == "" {
		defaultChannel = DefaultChannel
	}
	return &SlackExtractor{completer: c, defaultChannel: normalizeChannel(defaultChannel)}
}

// ExtractSend prefers quoted text verbatim, then phrase patterns, then a
// drafted message. Message is empty only when no draft could be produced.
func (e *SlackExtractor) ExtractSend(ctx context.Context, raw string) model.SlackTarget {
	target := model.SlackTarget{Channel: e.channel(normalize.StripQuoted(raw))}

	if quoted, ok := normalize.Quoted(raw); ok && strings.TrimSpace(quoted) != "" {
		target.Message = quoted
		target.IsQuoted = true
		return target
	}

	rest := channelRefRe.ReplaceAllString(raw, "")
	for _, p := range messagePatterns {
		m := p.re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		msg := trimChannelTail(collapse(m[1]))
		if len([]rune(msg)) < 5 || genericMessages[strings.ToLower(msg)] {
			continue
		}
		target.Message = p.format(msg)
		return target
	}

	if e.completer == nil {
		return target
	}
	out, err := e.completer.Complete(ctx, llm.SlackMessagePrompt(target.Channel, raw))
	if err != nil {
		logger.Warn().Err(err).Str("channel", target.Channel).Msg("slack message draft failed")
		return target
	}
	if msg := llm.CleanMessage(out); msg != "" {
		target.Message = msg
		target.IsAIGenerated = true
	}
	return target
}

var channelTailRe = regexp.MustCompile(`(?i)\s+(?:in|on|to)\s+(?:the\s+)?[\w\-]+\s+channel\s*$`)

func trimChannelTail(s string) string {
	return strings.TrimSpace(channelTailRe.ReplaceAllString(s, ""))
}

func (e *SlackExtractor) channel(text string) string {
	if ch, ok := findChannel(text); ok {
		return ch
	}
	return e.defaultChannel
}

func findChannel(text string) (string, bool) {
	if m := hashChannelRe.FindStringSubmatch(text); m != nil {
		return normalizeChannel(m[1]), true
	}
	for _, re := range channelPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if isStopWord(notChannels, m[1]) {
				continue
			}
			return normalizeChannel(m[1]), true
		}
	}
	return "", false
}

func normalizeChannel(name string) string {
	return "#" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}

var (
	limitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:last|latest|recent|top|first)\s+(\d+)\b`),
		regexp.MustCompile(`(?i)\b(\d+)\s+(?:latest\s+|recent\s+|last\s+|new\s+|unread\s+)?(?:slack\s+|crm\s+)?(?:messages?|e-?mails?|mails?|contacts?)\b`),
	}
	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:about|mentioning|containing|regarding|related\s+to|search(?:ing)?\s+for|with\s+the\s+word)\s+["“']([^"”']+)["”']`),
		regexp.MustCompile(`(?i)\b(?:about|mentioning|containing|regarding|related\s+to|search(?:ing)?\s+for|with\s+the\s+word)\s+(.+?)(?:\s+(?:in|from|on)\s+(?:the\s+)?#?[\w\-]+(?:\s+channel)?)?\s*$`),
	}
)

// ExtractLimit reads a result count such as "last 3" or "10 emails",
// clamped to [1, limit]. def is returned when no count is present.
func ExtractLimit(raw string, def, limit int) int {
	for _, re := range limitPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return def
			}
			return min(max(n, 1), limit)
		}
	}
	return def
}

// ExtractSlackQuery reads channel, message count and optional search term
func ExtractSlackQuery(raw string, defaultChannel string) model.SlackQuery {
	if defaultChannel == "" {
		defaultChannel = DefaultChannel
	}
	q := model.SlackQuery{Channel: normalizeChannel(defaultChannel), Limit: DefaultSlackLimit}
	if ch, ok := findChannel(raw); ok {
		q.Channel = ch
	}

	q.Limit = ExtractLimit(raw, DefaultSlackLimit, MaxSlackLimit)

	for _, re := range searchPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			q.SearchTerm = strings.TrimSpace(m[1])
			break
		}
	}
	return q
}
