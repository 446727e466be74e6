// Package errors classifies failures into user-facing kinds with hints.
package errors

import (
	stderrors "errors"
	"strings"

	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/resolve"
)

type ErrorKind string

const (
	ErrorKindAuth        ErrorKind = "auth"
	ErrorKindOffline     ErrorKind = "offline"
	ErrorKindNotFound    ErrorKind = "not-found"
	ErrorKindInvalidPath ErrorKind = "invalid-path"
	ErrorKindInstall     ErrorKind = "install"
	ErrorKindManifest    ErrorKind = "manifest"
	ErrorKindOther       ErrorKind = "other"
)

type ClassifiedError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
	Raw     error     `json:"-"`
}

func (e ClassifiedError) Error() string {
	return e.Message
}

func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	var installErr *install.InstallError
	if stderrors.As(err, &installErr) {
		kind := ErrorKindInstall
		hint := "Re-run 'hivectl install " + installErr.Tool + "' to retry just this tool."
		if stderrors.Is(err, resolve.ErrInvalidPath) {
			kind = ErrorKindInvalidPath
			hint = "The manifest entry has a bad path; run 'hivectl validate' against the manifest."
		}
		return ClassifiedError{Kind: kind, Message: err.Error(), Hint: hint, Raw: err}
	}
	if stderrors.Is(err, resolve.ErrInvalidPath) {
		return ClassifiedError{
			Kind:    ErrorKindInvalidPath,
			Message: err.Error(),
			Hint:    "Tool paths must start with ./ and reference a .py file in the repository.",
			Raw:     err,
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "rate limit"):
		return ClassifiedError{
			Kind:    ErrorKindAuth,
			Message: err.Error(),
			Hint:    "Set GITHUB_TOKEN (or HIVECTL_TOKEN) to authenticate against GitHub.",
			Raw:     err,
		}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return ClassifiedError{
			Kind:    ErrorKindOffline,
			Message: err.Error(),
			Hint:    "Check your network connection and try again.",
			Raw:     err,
		}
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "Run 'hivectl update' to refresh the registry, then 'hivectl find' to locate the tool.",
			Raw:     err,
		}
	case strings.Contains(msg, "malformed manifest"):
		return ClassifiedError{
			Kind:    ErrorKindManifest,
			Message: err.Error(),
			Hint:    "The manifest has a tool entry before any category header; the previous registry stays active.",
			Raw:     err,
		}
	default:
		return ClassifiedError{
			Kind:    ErrorKindOther,
			Message: err.Error(),
			Raw:     err,
		}
	}
}
