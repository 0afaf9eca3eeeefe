package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and collapses", "  Schedule   MEETING  tomorrow ", "schedule meeting tomorrow"},
		{"typo next", "meeting nex wednesday", "meeting next wednesday"},
		{"typo meeting", "set up a meetinf on friday", "set up a meeting on friday"},
		{"am pm spacing", "at 2PM", "at 2 pm"},
		{"dotted pm", "at 2 p.m.", "at 2 pm"},
		{"minutes pm", "at 10:30am", "at 10:30 am"},
		{"hours shorthand", "for 2h", "for 2 hours"},
		{"single hour shorthand", "for 1hr", "for 1 hour"},
		{"send a mail", "please send a mail to bob", "please send email to bob"},
		{"send an email", "send an email to bob", "send email to bob"},
		{"post to slack", "post to slack that we ship", "send slack that we ship"},
		{"check emails", "check my emails", "retrieve email"},
		{"for next week", "meeting for next week", "meeting next week"},
		{"next week on weekday", "meeting next week on wednesday at 2 pm", "meeting next week wednesday at 2 pm"},
		{"next week time then weekday", "meeting next week at 3 pm on friday", "meeting next week friday at 3 pm"},
		{"weekday then next week", "meeting on monday next week at 9 am", "meeting next week monday at 9 am"},
		{"for weekday", "book it for tuesday at 4 pm", "book it for next tuesday at 4 pm"},
		{"weekday typo", "wensday at 3pm", "wednesday at 3 pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeKeepsQuotedSpans(t *testing.T) {
	in := `Send a Slack message to #eng saying "Deploy IS live at 3PM, nex steps soon"`
	got := Normalize(in)
	assert.Contains(t, got, `"Deploy IS live at 3PM, nex steps soon"`)
	assert.Contains(t, got, "send a slack message to #eng saying")
}

func TestNormalizeApostropheIsNotAQuote(t *testing.T) {
	got := Normalize("Let's MEET at 3PM, it's 'Urgent'")
	assert.Equal(t, "let's meet at 3 pm, it's 'Urgent'", got)
}

func TestNormalizeLeavesEmailAddressesAlone(t *testing.T) {
	got := Normalize("send email to Fri.Nex@Example.com")
	assert.Equal(t, "send email to fri.nex@example.com", got)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Schedule meeting next Wednesday at 2pm for 2 hours",
		"send email to jane.doe@example.com saying the report is ready",
		`send a slack message to #eng saying 'deploy is live'`,
		"for for next week meetinf",
		"Meeting on Friday next week at 10AM for 3hrs",
		"post to slack \"Hello   World\" please",
		"update crm email for John Smith to john@new.com",
		"let's meet sometime",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestSplit(t *testing.T) {
	segs := Split(`say "hi there" now`)
	if assert.Len(t, segs, 3) {
		assert.Equal(t, Segment{Text: "say "}, segs[0])
		assert.Equal(t, Segment{Text: `"hi there"`, Quoted: true}, segs[1])
		assert.Equal(t, Segment{Text: " now"}, segs[2])
	}

	assert.Equal(t, []Segment{{Text: "it's fine"}}, Split("it's fine"))
	assert.Equal(t, []Segment{{Text: `an "unterminated quote`}}, Split(`an "unterminated quote`))
}

func TestQuoted(t *testing.T) {
	got, ok := Quoted(`post to #eng saying “deploy is live”`)
	assert.True(t, ok)
	assert.Equal(t, "deploy is live", got)

	_, ok = Quoted("no quotes here, isn't it")
	assert.False(t, ok)
}

func TestStripQuoted(t *testing.T) {
	assert.Equal(t, "post   to #eng", StripQuoted(`post "hello" to #eng`))
}
