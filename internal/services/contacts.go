package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"workflowx/src/model"
)

// ContactDirectory is an in-memory CRM used for local runs and tests
type ContactDirectory struct {
	mu       sync.RWMutex
	contacts []model.Contact
	nextID   int
}

// NewContactDirectory creates a directory seeded with the given contacts
func NewContactDirectory(seed ...model.Contact) *ContactDirectory {
	d := &ContactDirectory{nextID: 1}
	for _, c := range seed {
		if c.ID == "" {
			c.ID = d.newID()
		}
		d.contacts = append(d.contacts, c)
	}
	return d
}

func (d *ContactDirectory) newID() string {
	id := strconv.Itoa(d.nextID)
	d.nextID++
	return id
}

// ListContacts returns the most recently added contacts first
func (d *ContactDirectory) ListContacts(ctx context.Context, limit int) ([]model.Contact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.Contact, 0, limit)
	for i := len(d.contacts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.contacts[i])
	}
	return out, nil
}

func (d *ContactDirectory) FindByEmail(ctx context.Context, email string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.contacts {
		if strings.EqualFold(c.Email, email) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

func (d *ContactDirectory) FindByName(ctx context.Context, first, last string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.contacts {
		if strings.EqualFold(c.FirstName, first) && (last == "" || strings.EqualFold(c.LastName, last)) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

func (d *ContactDirectory) CreateContact(ctx context.Context, first, last, email string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.contacts {
		if email != "" && strings.EqualFold(c.Email, email) {
			return "", fmt.Errorf("directory: %s: %w", email, ErrContactExists)
		}
	}
	c := model.Contact{ID: d.newID(), FirstName: first, LastName: last, Email: email}
	d.contacts = append(d.contacts, c)
	return c.ID, nil
}

func (d *ContactDirectory) UpdateContact(ctx context.Context, id string, update model.ContactUpdate) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.contacts {
		if d.contacts[i].ID != id {
			continue
		}
		if update.FirstName != "" {
			d.contacts[i].FirstName = update.FirstName
		}
		if update.LastName != "" {
			d.contacts[i].LastName = update.LastName
		}
		if update.Email != "" {
			d.contacts[i].Email = update.Email
		}
		return id, nil
	}
	return "", fmt.Errorf("directory: %s: %w", id, ErrContactNotFound)
}
