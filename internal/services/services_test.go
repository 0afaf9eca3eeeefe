package services

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"workflowx/src/model"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, r *http.Request, v any) {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(raw, v))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestZeroShotClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/facebook/bart-large-mnli", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var req zeroShotRequest
		readJSON(t, r, &req)
		assert.Equal(t, "post to slack", req.Inputs)
		assert.Equal(t, []string{"send_slack", "general"}, req.Parameters.CandidateLabels)

		writeJSON(w, http.StatusOK, `{"sequence":"post to slack","labels":["send_slack","general"],"scores":[0.91,0.09]}`)
	}))
	defer srv.Close()

	z, err := NewZeroShotClient(model.ZeroShotConfig{BaseURL: srv.URL, Model: "facebook/bart-large-mnli", Token: "hf-token"})
	require.NoError(t, err)

	scores, err := z.ClassifyZeroShot(context.Background(), "post to slack", []string{"send_slack", "general"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "send_slack", scores[0].Label)
	assert.InDelta(t, 0.91, scores[0].Score, 1e-9)
}

func TestZeroShotListFormAndErrors(t *testing.T) {
	out, err := decodeZeroShot([]byte(`[{"labels":["general"],"scores":[1]}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, out.Labels)

	_, err = decodeZeroShot([]byte(`[]`))
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"error":"model loading"}`)
	}))
	defer srv.Close()
	z, err := NewZeroShotClient(model.ZeroShotConfig{BaseURL: srv.URL, Model: "m", Token: "t"})
	require.NoError(t, err)
	_, err = z.ClassifyZeroShot(context.Background(), "x", []string{"general"})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
}

func TestStatusErrorBodyKeepsRunesWhole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, strings.Repeat("ü", 400))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL, time.Second).R().Get("/")
	err = check("test", resp, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.True(t, utf8.ValidString(se.Body))
	assert.Equal(t, 300, utf8.RuneCountInString(se.Body))
}

func TestNotConfigured(t *testing.T) {
	_, err := NewZeroShotClient(model.ZeroShotConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewSlackClient(model.SlackConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewHubSpotClient(model.HubSpotConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = GoogleHTTPClient(context.Background(), model.GoogleConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCalendarCreateEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
		assert.Equal(t, "Bearer cal-token", r.Header.Get("Authorization"))

		var req eventRequest
		readJSON(t, r, &req)
		assert.Equal(t, "Sprint review", req.Summary)
		assert.Equal(t, "2025-03-10T14:00:00-05:00", req.Start.DateTime)
		assert.Equal(t, "2025-03-10T16:00:00-05:00", req.End.DateTime)
		assert.Equal(t, "America/Chicago", req.Start.TimeZone)
		require.Len(t, req.Attendees, 1)
		assert.Equal(t, "ana@x.com", req.Attendees[0].Email)
		assert.Contains(t, req.Description, "With: Bob")
		require.NotNil(t, req.ConferenceData)

		writeJSON(w, http.StatusOK, `{"id":"evt1","htmlLink":"https://calendar.google.com/event?eid=evt1"}`)
	}))
	defer srv.Close()

	cfg := model.GoogleConfig{AccessToken: "cal-token", CalendarID: "primary", CalendarURL: srv.URL}
	hc, err := GoogleHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, loc)

	link, err := NewCalendarClient(hc, cfg).CreateEvent(context.Background(), model.CalendarEvent{
		Title:    "Sprint review",
		Start:    start,
		End:      start.Add(2 * time.Hour),
		TimeZone: "America/Chicago",
		Modifiers: model.MeetingModifiers{
			Type:      model.MeetingVideo,
			Attendees: []string{"ana@x.com", "Bob"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://calendar.google.com/event?eid=evt1", link)
}

func TestCalendarMissingLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("conferenceDataVersion"))
		writeJSON(w, http.StatusOK, `{"id":"evt1"}`)
	}))
	defer srv.Close()

	cfg := model.GoogleConfig{AccessToken: "t", CalendarID: "primary", CalendarURL: srv.URL}
	hc, err := GoogleHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	_, err = NewCalendarClient(hc, cfg).CreateEvent(context.Background(), model.CalendarEvent{Title: "x"})
	assert.Error(t, err)
}

func TestGmailSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/messages/send", r.URL.Path)

		var req gmailRaw
		readJSON(t, r, &req)
		raw, err := base64.URLEncoding.DecodeString(req.Raw)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "To: bob@x.com\r\n")
		assert.Contains(t, string(raw), "Subject: Offsite\r\n")
		assert.True(t, strings.HasSuffix(string(raw), "\r\n\r\nSee you there."))

		writeJSON(w, http.StatusOK, `{"id":"msg-1","threadId":"t-1"}`)
	}))
	defer srv.Close()

	cfg := model.GoogleConfig{AccessToken: "t", GmailURL: srv.URL}
	hc, err := GoogleHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	id, err := NewGmailClient(hc, cfg).Send(context.Background(), "bob@x.com", "Offsite", "See you there.")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestGmailListRecent(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("Quarterly numbers attached."))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me/messages":
			assert.Equal(t, "INBOX", r.URL.Query().Get("labelIds"))
			assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
			writeJSON(w, http.StatusOK, `{"messages":[{"id":"a"}]}`)
		case "/users/me/messages/a":
			assert.Equal(t, "full", r.URL.Query().Get("format"))
			writeJSON(w, http.StatusOK, `{"id":"a","snippet":"Quarterly","payload":{
				"mimeType":"multipart/alternative",
				"headers":[{"name":"From","value":"cfo@x.com"},{"name":"Subject","value":"Q3"},{"name":"Date","value":"Mon, 3 Mar 2025"}],
				"parts":[{"mimeType":"text/html","body":{"data":"PGI-"}},{"mimeType":"text/plain","body":{"data":"`+body+`"}}]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := model.GoogleConfig{AccessToken: "t", GmailURL: srv.URL}
	hc, err := GoogleHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	msgs, err := NewGmailClient(hc, cfg).ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "cfo@x.com", msgs[0].From)
	assert.Equal(t, "Q3", msgs[0].Subject)
	assert.Equal(t, "Quarterly numbers attached.", msgs[0].Body)
}

func TestSlackPostMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-1", r.Header.Get("Authorization"))

		var req slackPost
		readJSON(t, r, &req)
		if req.Channel == "#missing" {
			writeJSON(w, http.StatusOK, `{"ok":false,"error":"channel_not_found"}`)
			return
		}
		assert.Equal(t, "#general", req.Channel)
		assert.Equal(t, "hello", req.Text)
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	}))
	defer srv.Close()

	s, err := NewSlackClient(model.SlackConfig{BotToken: "xoxb-1", BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, s.PostMessage(context.Background(), "#general", "hello"))
	assert.ErrorIs(t, s.PostMessage(context.Background(), "#missing", "hello"), ErrChannelNotFound)
}

func TestSlackGetMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/conversations.list":
			if r.URL.Query().Get("cursor") == "" {
				writeJSON(w, http.StatusOK, `{"ok":true,"channels":[{"id":"C0000001","name":"random"}],"response_metadata":{"next_cursor":"p2"}}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"ok":true,"channels":[{"id":"C0000002","name":"eng"}],"response_metadata":{"next_cursor":""}}`)
		case "/conversations.history":
			assert.Equal(t, "C0000002", r.URL.Query().Get("channel"))
			assert.Equal(t, "200", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, `{"ok":true,"messages":[
				{"user":"U1","text":"Deploy done","ts":"1741000000.000100"},
				{"user":"U2","text":"lunch?","ts":"1740990000.000000"},
				{"user":"U3","text":"deploy rolled back","ts":"1740980000.000000"}]}`)
		}
	}))
	defer srv.Close()

	s, err := NewSlackClient(model.SlackConfig{BotToken: "xoxb-1", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, s.SupportsSearch())

	msgs, err := s.GetMessages(context.Background(), "#eng", 5, "deploy")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Deploy done", msgs[0].Text)
	assert.Equal(t, int64(1741000000), msgs[0].Timestamp.Unix())
	assert.Equal(t, 100000, msgs[0].Timestamp.Nanosecond())

	_, err = s.GetMessages(context.Background(), "#nope", 5, "")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestHubSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hs-1", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == contactsPath:
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			assert.ElementsMatch(t, contactProperties, r.URL.Query()["properties"])
			writeJSON(w, http.StatusOK, `{"results":[{"id":"11","properties":{"firstname":"Ana","lastname":"Ruiz","email":"ana@x.com"}}]}`)
		case r.Method == http.MethodPost && r.URL.Path == contactsPath+"/search":
			var req hsSearch
			readJSON(t, r, &req)
			require.Len(t, req.FilterGroups, 1)
			f := req.FilterGroups[0].Filters
			if f[0].PropertyName == "email" && f[0].Value == "ana@x.com" {
				writeJSON(w, http.StatusOK, `{"results":[{"id":"11"}]}`)
				return
			}
			if f[0].PropertyName == "firstname" && len(f) == 2 && f[1].Value == "Ruiz" {
				writeJSON(w, http.StatusOK, `{"results":[{"id":"11"}]}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"results":[]}`)
		case r.Method == http.MethodPost && r.URL.Path == contactsPath:
			var req hsProperties
			readJSON(t, r, &req)
			if req.Properties["email"] == "dup@x.com" {
				writeJSON(w, http.StatusConflict, `{"message":"Contact already exists"}`)
				return
			}
			assert.Equal(t, map[string]string{"firstname": "Jo", "lastname": "Kim", "email": "jo@x.com"}, req.Properties)
			writeJSON(w, http.StatusCreated, `{"id":"12"}`)
		case r.Method == http.MethodPatch && r.URL.Path == contactsPath+"/11":
			var req hsProperties
			readJSON(t, r, &req)
			assert.Equal(t, map[string]string{"email": "ana@y.com"}, req.Properties)
			writeJSON(w, http.StatusOK, `{"id":"11"}`)
		case r.Method == http.MethodPatch:
			writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	h, err := NewHubSpotClient(model.HubSpotConfig{Token: "hs-1", BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	list, err := h.ListContacts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Ruiz", list[0].FullName())

	id, found, err := h.FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "11", id)

	_, found, err = h.FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	id, found, err = h.FindByName(ctx, "Ana", "Ruiz")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "11", id)

	id, err = h.CreateContact(ctx, "Jo", "Kim", "jo@x.com")
	require.NoError(t, err)
	assert.Equal(t, "12", id)

	_, err = h.CreateContact(ctx, "Jo", "Kim", "dup@x.com")
	assert.ErrorIs(t, err, ErrContactExists)

	id, err = h.UpdateContact(ctx, "11", model.ContactUpdate{Email: "ana@y.com"})
	require.NoError(t, err)
	assert.Equal(t, "11", id)

	_, err = h.UpdateContact(ctx, "99", model.ContactUpdate{Email: "x@y.com"})
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewContactDirectory(model.Contact{FirstName: "Ana", LastName: "Ruiz", Email: "ana@x.com"})

	id, err := d.CreateContact(ctx, "Jo", "Kim", "jo@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2", id)

	_, err = d.CreateContact(ctx, "Jo", "Kim", "JO@x.com")
	assert.ErrorIs(t, err, ErrContactExists)

	list, err := d.ListContacts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Jo", list[0].FirstName)

	id, found, err := d.FindByName(ctx, "ana", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", id)

	_, err = d.UpdateContact(ctx, "1", model.ContactUpdate{LastName: "Diaz"})
	require.NoError(t, err)
	id, found, err = d.FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", id)

	_, err = d.UpdateContact(ctx, "7", model.ContactUpdate{LastName: "X"})
	assert.ErrorIs(t, err, ErrContactNotFound)
}
