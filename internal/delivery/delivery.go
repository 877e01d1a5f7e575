// Package delivery mails the rendered menu to every subscriber through one of several email
// providers.
package delivery

import (
	"context"
	"fmt"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Address is the sender of every message.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Provider sends a single message.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ProviderError is returned when an email api rejects a message.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}
