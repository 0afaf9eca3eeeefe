// Package services holds the HTTP clients for the external collaborators:
// the zero-shot classifier, Google Calendar, Gmail, Slack and HubSpot.
package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when a collaborator has no credentials
var ErrNotConfigured = errors.New("collaborator not configured")

// StatusError is a non-2xx response from a collaborator
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

func newClient(base string, timeout time.Duration) *resty.Client {
	return newClientWith(resty.New(), base, timeout)
}

func newClientWith(c *resty.Client, base string, timeout time.Duration) *resty.Client {
	c.SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// check turns a transport error or a non-2xx status into an error
func check(service string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s request: %w", service, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		body := resp.String()
		if r := []rune(body); len(r) > 300 {
			body = string(r[:300])
		}
		return &StatusError{Service: service, Status: resp.StatusCode(), Body: body}
	}
	return nil
}
