// Package textgen talks to the remote text-generation service used for
// novel rounds. Failures come back as *Error carrying a Class, so callers can
// decide between retrying and backing off without inspecting messages.
package textgen

import (
	"errors"
	"fmt"
)

// Class groups remote failures by how the caller should react.
type Class int

const (
	// ClassTransient covers network errors, timeouts and 5xx responses.
	ClassTransient Class = iota
	ClassAuth
	ClassQuota
	ClassRateLimit
)

func (c Class) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassQuota:
		return "quota"
	case ClassRateLimit:
		return "rate_limit"
	default:
		return "transient"
	}
}

type Error struct {
	Class  Class
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("textgen %s (status %d): %v", e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("textgen %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ClassOf reports the class of err. Errors that did not come from this
// package are treated as transient.
func ClassOf(err error) Class {
	var te *Error
	if errors.As(err, &te) {
		return te.Class
	}
	return ClassTransient
}

// Request carries one prompt plus its sampling knobs.
type Request struct {
	Model           string
	Prompt          string
	Temperature     float64
	MaxTokens       int
	PresencePenalty float64
}
