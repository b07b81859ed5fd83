// Package listener holds what the notification listener adapters share.
package listener

import (
	"errors"
	"fmt"
)

// Kind identifies a listener adapter.
type Kind string

const (
	KindReplay Kind = "replay"
	KindMail   Kind = "mail"
)

// AuthError indicates that a listener could not authenticate against its
// backing service. Adapters report it as refused access.
type AuthError struct {
	Listener Kind
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Listener, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
