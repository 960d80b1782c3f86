// Package push delivers notifications to device endpoints and reports failures
// as a small closed set of kinds, decoded once at the provider boundary.
package push

import (
	"context"
	"errors"
	"fmt"
)

// Message is one notification addressed to one device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Provider submits a single message.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, msg Message) error

func (f ProviderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Kind classifies a delivery failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPermanentInvalidToken means the token will never accept messages again.
	KindPermanentInvalidToken
	// KindTransient covers outages, throttling and timeouts; the token stays.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindPermanentInvalidToken:
		return "permanent_invalid_token"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// DeliveryError is returned by every Provider in this package.
type DeliveryError struct {
	Kind     Kind
	Provider string
	Code     string
	Err      error
}

func (e *DeliveryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s delivery failed (%s, %s): %v", e.Provider, e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s delivery failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind. Errors that did not come through a provider are KindUnknown.
func KindOf(err error) Kind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsPermanent reports whether err says the token should be forgotten.
func IsPermanent(err error) bool {
	return KindOf(err) == KindPermanentInvalidToken
}
