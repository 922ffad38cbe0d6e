// Package skinerr defines the failure taxonomy of the skin engine. Every
// error carries an errbuilder code (used for exit codes and generic
// handling), a Kind naming the failure class, and the path of the
// document node that caused it.
package skinerr

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type Kind string

const (
	MalformedDocument         Kind = "MalformedDocument"
	MissingOrInvalidAttribute Kind = "MissingOrInvalidAttribute"
	MissingOrInvalidValue     Kind = "MissingOrInvalidValue"
	DuplicateDefinition       Kind = "DuplicateDefinition"
	MissingWidget             Kind = "MissingWidget"
	MissingComponentProperty  Kind = "MissingComponentProperty"
	ReadOnlyProperty          Kind = "ReadOnlyProperty"
	UnsupportedType           Kind = "UnsupportedType"
	MalformedValue            Kind = "MalformedValue"
	ColorNotFound             Kind = "ColorNotFound"
	SpriteNotFound            Kind = "SpriteNotFound"
	AtlasNotFound             Kind = "AtlasNotFound"
	IndexOutOfRange           Kind = "IndexOutOfRange"
	TooManySpritesInAtlas     Kind = "TooManySpritesInAtlas"
)

// Error is a classified skin failure.
type Error struct {
	Kind Kind
	// Node is the diagnostic path of the offending element or attribute.
	Node string
	err  error
}

func (e *Error) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.err.Error())
	}
	return fmt.Sprintf("%s at %q: %s", e.Kind, e.Node, e.err.Error())
}

func (e *Error) Unwrap() error {
	return e.err
}

// New builds a classified error with the errbuilder code matching kind.
func New(kind Kind, node string, msg string) *Error {
	return &Error{
		Kind: kind,
		Node: node,
		err:  builderFor(kind).WithMsg(msg),
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, node string, format string, args ...any) *Error {
	return New(kind, node, fmt.Sprintf(format, args...))
}

// Wrap builds a classified error that keeps cause in its chain.
func Wrap(kind Kind, node string, msg string, cause error) *Error {
	return &Error{
		Kind: kind,
		Node: node,
		err:  builderFor(kind).WithMsg(msg).WithCause(cause),
	}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return "", false
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// NodeOf returns the diagnostic node path attached to err, if any.
func NodeOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Node
	}
	return ""
}

func builderFor(kind Kind) *errbuilder.ErrBuilder {
	builder := errbuilder.New()
	switch kind {
	case MalformedDocument, MissingOrInvalidAttribute, MissingOrInvalidValue, MalformedValue, IndexOutOfRange:
		return builder.WithCode(errbuilder.CodeInvalidArgument)
	case DuplicateDefinition:
		return builder.WithCode(errbuilder.CodeAlreadyExists)
	case MissingWidget, MissingComponentProperty, ColorNotFound, SpriteNotFound, AtlasNotFound:
		return builder.WithCode(errbuilder.CodeNotFound)
	case ReadOnlyProperty:
		return builder.WithCode(errbuilder.CodePermissionDenied)
	case TooManySpritesInAtlas:
		return builder.WithCode(errbuilder.CodeFailedPrecondition)
	default:
		return builder.WithCode(errbuilder.CodeInternal)
	}
}
