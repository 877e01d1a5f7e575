// Package subscribers manages who receives the daily menu.
package subscribers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned when no subscriber matches an unsubscribe hash.
var ErrNotFound = errors.New("subscriber not found")

type Subscriber struct {
	Email string
}

// HashEmail is the hex sha256 of the exact email bytes, it identifies a subscriber in
// unsubscribe links and the delivery log without exposing the address.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// UnsubscribeURL is the per-recipient link substituted into the rendered menu.
func UnsubscribeURL(endpoint, email string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%shash=%s", endpoint, sep, url.QueryEscape(HashEmail(email)))
}

// Source lists the current subscribers.
type Source interface {
	List(ctx context.Context) ([]Subscriber, error)
}

// Remover deletes the subscriber whose email hashes to the given value, returning the email
// that was removed or ErrNotFound.
type Remover interface {
	RemoveByHash(ctx context.Context, hash string) (string, error)
}

// StaticSource is a fixed list of subscribers, it is used for test sends.
type StaticSource []Subscriber

func (s StaticSource) List(ctx context.Context) ([]Subscriber, error) {
	return s, nil
}

// ParseEmails turns a comma separated list into subscribers, blank entries are skipped.
func ParseEmails(list string) StaticSource {
	var out StaticSource
	for _, email := range strings.Split(list, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		out = append(out, Subscriber{Email: email})
	}
	return out
}
