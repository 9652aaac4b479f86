package apperrors

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

const detailsPrefix = "__json__:"

// Builder assembles an error fluently. Mark must be the last call in the chain.
type Builder struct {
	err error
}

// NewError starts a builder chain from a new message.
func NewError(msg string) *Builder {
	return &Builder{err: errors.New(msg)}
}

// NewErrorf starts a builder chain from a formatted message.
func NewErrorf(format string, args ...any) *Builder {
	return &Builder{err: errors.Newf(format, args...)}
}

// WithError starts a builder chain from an existing error.
func WithError(err error) *Builder {
	return &Builder{err: err}
}

// WithMessage adds internal context, never shown to clients.
func (b *Builder) WithMessage(msg string) *Builder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint adds the message shown to clients.
func (b *Builder) WithHint(hint string) *Builder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *Builder) WithHintf(format string, args ...any) *Builder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithDetails attaches structured details that are safe to return to clients.
func (b *Builder) WithDetails(details map[string]any) *Builder {
	raw, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, detailsPrefix+"%s", errors.Safe(string(raw)))
	return b
}

// Mark tags the error with a kind and returns it.
func (b *Builder) Mark(kind error) error {
	return errors.Mark(b.err, kind)
}

// Details collects every structured detail map attached with WithDetails.
func Details(err error) map[string]any {
	out := map[string]any{}
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, d := range payload.SafeDetails {
			if len(d) <= len(detailsPrefix) || d[:len(detailsPrefix)] != detailsPrefix {
				continue
			}
			var m map[string]any
			if json.Unmarshal([]byte(d[len(detailsPrefix):]), &m) == nil {
				for k, v := range m {
					out[k] = v
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Shorthands for the most common chains.

func NotFound(what string) error {
	return NewErrorf("%s not found", what).WithHintf("%s not found", what).Mark(ErrNotFound)
}

func Validation(hint string) error {
	return NewError(hint).WithHint(hint).Mark(ErrValidation)
}

func InvalidOperation(hint string) error {
	return NewError(hint).WithHint(hint).Mark(ErrInvalidOperation)
}

func Database(err error, hint string) error {
	return WithError(err).WithHint(hint).Mark(ErrDatabase)
}
