package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies the failures of the lifecycle operations.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnectionTimeout
	KindPersistence
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConnectionTimeout:
		return "connection timeout"
	case KindPersistence:
		return "persistence"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrGuildExists is returned by a Store when inserting a guild that
	// already has a row.
	ErrGuildExists = errors.New("guild already registered")
	// ErrGuildNotRegistered means no row matched the guild id.
	ErrGuildNotRegistered = errors.New("guild not registered")
	// ErrTeamNotFound is the cause of every validation failure.
	ErrTeamNotFound = errors.New("team not found")
)

// Error is returned by the Manager operations.
type Error struct {
	Op      string
	GuildID string
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s guild %s: %s: %v", e.Op, e.GuildID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindUnknown when err was not produced by
// this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func storeError(op, guildID string, err error) *Error {
	kind := KindPersistence
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindConnectionTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindConnectionTimeout
	}
	return &Error{Op: op, GuildID: guildID, Kind: kind, Err: err}
}
