// Package datetime turns natural-language date and time phrases into a
// concrete meeting window.
package datetime

import (
	"context"
	"regexp"
	"strings"
	"time"

	"workflowx/src/logger"
	"workflowx/src/model"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// Rewriter asks a generative model to restate a request as
// "START=YYYY-MM-DDThh:mm END=YYYY-MM-DDThh:mm".
type Rewriter interface {
	Rewrite(ctx context.Context, text string, ref time.Time) (string, error)
}

// Resolution is a resolved meeting window and how it was found
type Resolution struct {
	Window        model.TimeWindow
	DurationHours int
	Source        string
	TimeExplicit  bool
}

type Resolver struct {
	loc         *time.Location
	parser      *when.Parser
	rewriter    Rewriter
	defaultHour int
}

type Option func(*Resolver)

// WithRewriter enables the model-backed rewrite step between the structural
// patterns and the general parser.
func WithRewriter(rw Rewriter) Option {
	return func(r *Resolver) { r.rewriter = rw }
}

// WithDefaultHour sets the hour used when a date carries no time of day
func WithDefaultHour(hour int) Option {
	return func(r *Resolver) {
		if hour >= 0 && hour <= 23 {
			r.defaultHour = hour
		}
	}
}

func NewResolver(loc *time.Location, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	w := when.New(nil)
	w.Add(en.All...)

	r := &Resolver{
		loc:         loc,
		parser:      w,
		defaultHour: 15,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve finds a meeting window in text relative to ref. The second result
// is false when no date or time could be found; callers must not fall back to
// a default time in that case.
func (r *Resolver) Resolve(ctx context.Context, text string, ref time.Time) (Resolution, bool) {
	ref = ref.In(r.loc)
	lower := strings.ToLower(text)

	hours, rest, explicit := ExtractDuration(lower)
	if !explicit {
		hours = int(DefaultDuration / time.Hour)
	}
	rest = strings.Join(strings.Fields(rest), " ")

	start, source, timeExplicit, ok := r.findStart(ctx, text, rest, ref)
	if !ok {
		return Resolution{}, false
	}

	return Resolution{
		Window: model.TimeWindow{
			Start: start,
			End:   start.Add(time.Duration(hours) * time.Hour),
		},
		DurationHours: hours,
		Source:        source,
		TimeExplicit:  timeExplicit,
	}, true
}

func (r *Resolver) findStart(ctx context.Context, original, text string, ref time.Time) (time.Time, string, bool, bool) {
	tok, hasToken := findDateToken(text)
	for _, p := range patterns {
		// a bare "at 3 pm" must not stand in for a date the text names
		if p.name == "time" && hasToken {
			continue
		}
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, rollYear, ok := p.resolve(m, ref)
		if !ok {
			continue
		}
		// an explicit date that lands in the past is not silently replaced
		if start, ok = settle(start, ref, rollYear); !ok {
			return time.Time{}, "", false, false
		}
		return start, p.name, true, true
	}

	if hasToken {
		return r.resolveDateToken(tok, text, ref)
	}

	if r.rewriter != nil {
		if start, ok := r.rewrite(ctx, original, ref); ok {
			return start, "rewriter", true, true
		}
	}

	res, err := r.parser.Parse(text, ref)
	if err != nil {
		logger.Debug().Err(err).Str("text", text).Msg("date parser failed")
		return time.Time{}, "", false, false
	}
	if res == nil {
		return time.Time{}, "", false, false
	}

	start := res.Time.In(r.loc)
	timeExplicit := explicitTimeRe.MatchString(text)
	if !timeExplicit {
		start = at(start, clock{hour: r.defaultHour})
	} else {
		start = time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, r.loc)
	}
	rollYear := monthNameRe.MatchString(text) && !yearRe.MatchString(text)
	start, ok := settle(start, ref, rollYear)
	if !ok {
		return time.Time{}, "", false, false
	}
	return start, "parser", timeExplicit, true
}

// resolveDateToken handles numeric, ISO and ordinal-day dates. An invalid or
// past date is NOT_FOUND rather than a guess.
func (r *Resolver) resolveDateToken(tok dateToken, text string, ref time.Time) (time.Time, string, bool, bool) {
	c, timeExplicit := clockOutside(text, tok)
	if !timeExplicit {
		c = clock{hour: r.defaultHour}
	}
	start, rollYear, ok := resolveToken(tok, c, ref)
	if !ok {
		logger.Debug().Str("source", tok.source).Msg("date token does not name a valid date")
		return time.Time{}, "", false, false
	}
	if start, ok = settle(start, ref, rollYear); !ok {
		return time.Time{}, "", false, false
	}
	return start, tok.source, timeExplicit, true
}

var rewriteRe = regexp.MustCompile(`START=(\d{4}-\d{2}-\d{2}T\d{2}:\d{2})`)

func (r *Resolver) rewrite(ctx context.Context, text string, ref time.Time) (time.Time, bool) {
	out, err := r.rewriter.Rewrite(ctx, text, ref)
	if err != nil {
		logger.Warn().Err(err).Msg("date rewrite failed")
		return time.Time{}, false
	}
	m := rewriteRe.FindStringSubmatch(out)
	if m == nil {
		logger.Debug().Str("output", out).Msg("date rewrite returned no START")
		return time.Time{}, false
	}
	start, err := time.ParseInLocation("2006-01-02T15:04", m[1], r.loc)
	if err != nil {
		return time.Time{}, false
	}
	return settle(start, ref, false)
}

// settle pushes a past start forward: same-day times move to tomorrow and
// month/day dates without a year move to next year. Anything else in the past
// is rejected.
func settle(start, ref time.Time, rollYear bool) (time.Time, bool) {
	if !start.Before(ref) {
		return start, true
	}
	if sameDate(start, ref) {
		return addDays(start, 1), true
	}
	if rollYear {
		next := time.Date(start.Year()+1, start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, start.Location())
		if !next.Before(ref) {
			return next, true
		}
	}
	return time.Time{}, false
}

var (
	explicitTimeRe = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*[ap]\.?m\b|\b\d{1,2}:\d{2}\b|\bnoon\b|\bmidnight\b|\bat\s+\d{1,2}\b`)
	monthNameRe    = regexp.MustCompile(`\b` + monthExpr + `\b`)
	yearRe         = regexp.MustCompile(`\b\d{4}\b`)
)
