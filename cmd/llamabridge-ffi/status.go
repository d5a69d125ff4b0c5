package main

import (
	"errors"

	"github.com/expki/llamabridge"
)

// Status codes returned by llamabridge_generate_result. The values are
// mirrored by the enum in the cgo preamble of exports.go.
const (
	statusOK             = 0
	statusEmpty          = 1
	statusInvalidHandle  = -1
	statusDestroyed      = -2
	statusTokenizeFailed = -3
	statusPromptTooLong  = -4
	statusDecodeFailed   = -5
	statusError          = -99
)

// tokenizeFailedText is returned in place of generated text by the legacy
// llamabridge_generate export.
const tokenizeFailedText = "Error: Tokenization failed"

func statusOf(res llamabridge.Result, err error) int {
	switch {
	case err == nil && res.Empty():
		return statusEmpty
	case err == nil:
		return statusOK
	case errors.Is(err, llamabridge.ErrInvalidHandle):
		return statusInvalidHandle
	case errors.Is(err, llamabridge.ErrSessionDestroyed):
		return statusDestroyed
	case errors.Is(err, llamabridge.ErrTokenizeFailed):
		return statusTokenizeFailed
	case errors.Is(err, llamabridge.ErrPromptTooLong):
		return statusPromptTooLong
	case errors.Is(err, llamabridge.ErrDecodeFailed):
		return statusDecodeFailed
	default:
		return statusError
	}
}

// legacyText flattens a result into the string-only contract: "" for
// anything that produced no token, the tokenize sentinel text for
// tokenization failures, otherwise the token text.
func legacyText(res llamabridge.Result, err error) string {
	if err != nil {
		if errors.Is(err, llamabridge.ErrTokenizeFailed) {
			return tokenizeFailedText
		}
		return ""
	}
	return res.Text
}
