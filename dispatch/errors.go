package dispatch

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies a ModifierParseError.
type ErrorKind int

const (
	// UnknownModifier: the name is neither generated nor deprecated.
	UnknownModifier ErrorKind = iota + 1
	// DeprecatedModifier: the name was removed; Message says what to use.
	DeprecatedModifier
	// InvalidArguments: the name is known but no signature accepts the call.
	InvalidArguments
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownModifier:
		return "unknown modifier"
	case DeprecatedModifier:
		return "deprecated modifier"
	case InvalidArguments:
		return "invalid arguments"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// ModifierParseError is the structured error surfaced by a Dispatcher.
// Custom-modifier parsers return it to mark a failure as structured (see
// Dispatcher.Parse).
type ModifierParseError struct {
	Kind     ErrorKind
	Name     string
	Message  string
	Metadata Metadata
	Err      error
}

func (e *ModifierParseError) Error() string {
	msg := fmt.Sprintf("%s `%s` at %s", e.Kind, e.Name, e.Metadata)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModifierParseError) Unwrap() error { return e.Err }

// NewUnknownModifier reports a name with no parser.
func NewUnknownModifier(name string, meta Metadata) *ModifierParseError {
	return &ModifierParseError{Kind: UnknownModifier, Name: name, Metadata: meta}
}

// NewDeprecatedModifier reports a name found in the deprecation table.
func NewDeprecatedModifier(name, message string, meta Metadata) *ModifierParseError {
	return &ModifierParseError{Kind: DeprecatedModifier, Name: name, Message: message, Metadata: meta}
}

// NewInvalidArguments reports a call that no signature of name accepts.
func NewInvalidArguments(call *Call, err error) *ModifierParseError {
	return &ModifierParseError{Kind: InvalidArguments, Name: call.Name, Metadata: call.Metadata, Err: err}
}

// KindOf returns the kind of the first ModifierParseError in err's chain,
// or 0 when there is none.
func KindOf(err error) ErrorKind {
	var pe *ModifierParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// SyntaxError is a malformed call. It is not a ModifierParseError.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// UnavailableError is returned when a value is constrained to platforms or OS
// versions other than the running one.
type UnavailableError struct {
	Name     string
	Platform Platform
	Version  string
}

func (e *UnavailableError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("'%s' is not available in this OS version (requires %s %s)", e.Name, e.Platform, e.Version)
	}
	if e.Platform == "" {
		return fmt.Sprintf("'%s' is not available on this OS", e.Name)
	}
	return fmt.Sprintf("'%s' is not available on %s", e.Name, e.Platform)
}

// ErrNoCustomModifiers is the failure of a Dispatcher without a custom parser.
var ErrNoCustomModifiers = errors.New("no custom modifier parser registered")

// UnknownCase reports a case name that is not a member of the enumeration
// typ.
func UnknownCase(typ, name string) error {
	return errors.Newf("unknown %s case `%s`", typ, name)
}
