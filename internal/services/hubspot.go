package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"workflowx/src/metrics"
	"workflowx/src/model"

	"github.com/go-resty/resty/v2"
)

var (
	ErrContactExists   = errors.New("contact already exists")
	ErrContactNotFound = errors.New("contact not found")
)

const contactsPath = "/crm/v3/objects/contacts"

var contactProperties = []string{"email", "firstname", "lastname"}

// HubSpotClient manages CRM contacts through the HubSpot v3 objects API
type HubSpotClient struct {
	client *resty.Client
}

func NewHubSpotClient(cfg model.HubSpotConfig) (*HubSpotClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("hubspot: %w", ErrNotConfigured)
	}
	return &HubSpotClient{client: newClient(cfg.BaseURL, cfg.Timeout).SetAuthToken(cfg.Token)}, nil
}

type hsContact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

func (c hsContact) toModel() model.Contact {
	return model.Contact{
		ID:        c.ID,
		FirstName: c.Properties["firstname"],
		LastName:  c.Properties["lastname"],
		Email:     c.Properties["email"],
	}
}

type hsPage struct {
	Results []hsContact `json:"results"`
}

type hsFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type hsFilterGroup struct {
	Filters []hsFilter `json:"filters"`
}

type hsSearch struct {
	FilterGroups []hsFilterGroup `json:"filterGroups"`
	Properties   []string        `json:"properties"`
	Limit        int             `json:"limit"`
}

type hsProperties struct {
	Properties map[string]string `json:"properties"`
}

func (h *HubSpotClient) ListContacts(ctx context.Context, limit int) ([]model.Contact, error) {
	defer metrics.ObserveSince("hubspot", time.Now())

	params := url.Values{"limit": {strconv.Itoa(limit)}}
	for _, p := range contactProperties {
		params.Add("properties", p)
	}
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&hsPage{}).
		Get(contactsPath)
	if err := check("hubspot", resp, err); err != nil {
		return nil, err
	}

	page := resp.Result().(*hsPage)
	out := make([]model.Contact, len(page.Results))
	for i, c := range page.Results {
		out[i] = c.toModel()
	}
	return out, nil
}

func (h *HubSpotClient) FindByEmail(ctx context.Context, email string) (string, bool, error) {
	return h.search(ctx, hsFilter{PropertyName: "email", Operator: "EQ", Value: email})
}

// FindByName matches on first name, and on last name when one is given
func (h *HubSpotClient) FindByName(ctx context.Context, first, last string) (string, bool, error) {
	filters := []hsFilter{{PropertyName: "firstname", Operator: "EQ", Value: first}}
	if last != "" {
		filters = append(filters, hsFilter{PropertyName: "lastname", Operator: "EQ", Value: last})
	}
	return h.search(ctx, filters...)
}

func (h *HubSpotClient) search(ctx context.Context, filters ...hsFilter) (string, bool, error) {
	defer metrics.ObserveSince("hubspot", time.Now())

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(hsSearch{
			FilterGroups: []hsFilterGroup{{Filters: filters}},
			Properties:   contactProperties,
			Limit:        1,
		}).
		SetResult(&hsPage{}).
		Post(contactsPath + "/search")
	if err := check("hubspot", resp, err); err != nil {
		return "", false, err
	}
	page := resp.Result().(*hsPage)
	if len(page.Results) == 0 {
		return "", false, nil
	}
	return page.Results[0].ID, true, nil
}

func (h *HubSpotClient) CreateContact(ctx context.Context, first, last, email string) (string, error) {
	defer metrics.ObserveSince("hubspot", time.Now())

	props := model.ContactUpdate{FirstName: first, LastName: last, Email: email}.Properties()
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(hsProperties{Properties: props}).
		SetResult(&hsContact{}).
		Post(contactsPath)
	if err == nil && resp.StatusCode() == http.StatusConflict {
		return "", fmt.Errorf("hubspot: %s: %w", email, ErrContactExists)
	}
	if err := check("hubspot", resp, err); err != nil {
		return "", err
	}
	return resp.Result().(*hsContact).ID, nil
}

func (h *HubSpotClient) UpdateContact(ctx context.Context, id string, update model.ContactUpdate) (string, error) {
	defer metrics.ObserveSince("hubspot", time.Now())

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(hsProperties{Properties: update.Properties()}).
		SetResult(&hsContact{}).
		Patch(contactsPath + "/" + url.PathEscape(id))
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("hubspot: %s: %w", id, ErrContactNotFound)
	}
	if err := check("hubspot", resp, err); err != nil {
		return "", err
	}
	return resp.Result().(*hsContact).ID, nil
}
