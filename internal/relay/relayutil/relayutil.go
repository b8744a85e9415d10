package relayutil

import (
	"fmt"

	"github.com/pkg/errors"
)

// WrapInternal returns new error based on err and context.
// Adds 'internal error at [{context}]: ' prefix.
func WrapInternal(err error, context string) error {
	return fmt.Errorf("internal error at [%s]: %w", context, err)
}

// ChainInternal returns new error based on err and context.
// Adds '[{context}]: ' prefix.
func ChainInternal(err error, context string) error {
	return fmt.Errorf("[%s]: %w", context, err)
}

// IsErrorOf returns a matcher that reports whether an error wraps target.
func IsErrorOf(target error) func(error) bool {
	return func(actual error) bool {
		return errors.Is(actual, target)
	}
}

// IsAnyOf is IsErrorOf over several targets.
func IsAnyOf(targets ...error) func(error) bool {
	return func(actual error) bool {
		for _, target := range targets {
			if errors.Is(actual, target) {
				return true
			}
		}
		return false
	}
}
