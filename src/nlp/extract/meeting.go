package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"workflowx/src/model"
	"workflowx/src/nlp/datetime"
)

// MeetingExtractor resolves the window and modifiers of a meeting request
type MeetingExtractor struct {
	resolver *datetime.Resolver
}

func NewMeetingExtractor(r *datetime.Resolver) *MeetingExtractor {
	return &MeetingExtractor{resolver: r}
}

var testCalendarRe = regexp.MustCompile(`(?i)\btest\s+calendar\b`)

// testEventOffset and testEventHour place the "test calendar" event
const (
	testEventOffset = 3
	testEventHour   = 14
)

// Extract reads raw for modifiers and description and normalized for the
// time window. Found is false when no date or time was present.
func (e *MeetingExtractor) Extract(ctx context.Context, raw, normalized string, ref time.Time) model.MeetingSlots {
	slots := model.MeetingSlots{
		Modifiers: ExtractModifiers(raw),
	}
	slots.Topic = extractTopic(raw)
	slots.Description = slots.Topic
	if slots.Description == "" {
		slots.Description = truncate(collapse(raw), 50)
	}

	if testCalendarRe.MatchString(raw) {
		loc := e.resolver.Location()
		day := ref.In(loc).AddDate(0, 0, testEventOffset)
		start := time.Date(day.Year(), day.Month(), day.Day(), testEventHour, 0, 0, 0, loc)
		hours := 1
		if h, _, ok := datetime.ExtractDuration(normalized); ok {
			hours = h
		}
		slots.Window = model.TimeWindow{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
		slots.DurationHours = hours
		slots.Found = true
		slots.TestEvent = true
		return slots
	}

	res, ok := e.resolver.Resolve(ctx, normalized, ref)
	if !ok {
		return slots
	}
	slots.Window = res.Window
	slots.DurationHours = res.DurationHours
	slots.Found = true
	return slots
}

var (
	priorityRe = regexp.MustCompile(`(?i)\b(?:urgent|urgently|asap|high[\s-]priority|important|critical|top[\s-]priority)\b`)

	meetingTypes = []struct {
		kind model.MeetingType
		re   *regexp.Regexp
	}{
		{model.MeetingInterview, regexp.MustCompile(`(?i)\binterview(?:s|ing)?\b`)},
		{model.MeetingOneOnOne, regexp.MustCompile(`(?i)\b(?:1\s*(?:on|:|-)\s*1|one[\s-]on[\s-]one)\b`)},
		{model.MeetingVideo, regexp.MustCompile(`(?i)\b(?:video|zoom|google\s+meet|teams|webex|hangout)\b`)},
		{model.MeetingInPerson, regexp.MustCompile(`(?i)\b(?:in[\s-]person|face[\s-]to[\s-]face|on[\s-]?site|in\s+the\s+office)\b`)},
		{model.MeetingCall, regexp.MustCompile(`(?i)\b(?:call|phone|dial[\s-]in)\b`)},
	}

	attendeesRe  = regexp.MustCompile(`(?i)\bwith\s+(.+?)(?:\s+(?:on|at|for|about|regarding|re|to|tomorrow|today|next|this|in|from|by)\b|[.?!;](?:\s|$)|$)`)
	attendeeSep  = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b)\s*`)
	notAttendees = map[string]bool{
		"me": true, "us": true, "you": true, "them": true, "everyone": true,
	}
	notAttendeeRe = regexp.MustCompile(`(?i)^(?:an?\s+|the\s+)?(?:duration|priority|high|video|zoom|phone|call|meeting|subject)\b`)
)

// ExtractModifiers finds meeting type, attendees and priority in raw text
func ExtractModifiers(raw string) model.MeetingModifiers {
	var m model.MeetingModifiers
	if priorityRe.MatchString(raw) {
		m.Priority = model.PriorityHigh
	}
	for _, t := range meetingTypes {
		if t.re.MatchString(raw) {
			m.Type = t.kind
			break
		}
	}
	m.Attendees = extractAttendees(raw)
	return m
}

func extractAttendees(raw string) []string {
	match := attendeesRe.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	var out []string
	for _, part := range attendeeSep.Split(match[1], -1) {
		part = strings.TrimSpace(part)
		if part == "" || isStopWord(notAttendees, part) || notAttendeeRe.MatchString(part) || startsWithDigit(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

var (
	topicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bto\s+discuss\s+(.+?)(?:\s+(?:on|at|with|tomorrow|today|next|this|for)\b|[.?!;](?:\s|$)|$)`),
		regexp.MustCompile(`(?i)\b(?:about|regarding|re:)\s+(.+?)(?:\s+(?:on|at|with|tomorrow|today|next|this|for)\b|[.?!;](?:\s|$)|$)`),
		regexp.MustCompile(`(?i)\bfor\s+(.+?)(?:\s+(?:on|at|with|tomorrow|today|next|this)\b|[.?!;](?:\s|$)|$)`),
	}
	notTopic = regexp.MustCompile(`(?i)^(?:\d|next\b|this\b|tomorrow\b|today\b|a\s+duration\b|an?\s+hour|monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|may|june|july|august|september|october|november|december)`)
)

func extractTopic(raw string) string {
	for _, re := range topicPatterns {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			topic := strings.Trim(collapse(m[1]), `"'`)
			if topic == "" || notTopic.MatchString(topic) {
				continue
			}
			return topic
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
