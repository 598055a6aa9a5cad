package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes carried on wrapped command errors. The HTTP and CLI
// surfaces report these identifiers rather than raw messages.
const (
	codeMessageInvalid = "PAGESYNC_COMMAND_INVALID"
	codeRunCanceled    = "PAGESYNC_COMMAND_CANCELED"
	codeRunTimedOut    = "PAGESYNC_COMMAND_TIMEOUT"
	codeContextBroken  = "PAGESYNC_COMMAND_CONTEXT"
	codeRunFailed      = "PAGESYNC_COMMAND_FAILED"
)

// Already-wrapped errors pass through untouched so inner handlers keep
// their more specific category and code.

func wrapValidationError(err error, operation string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, describe(operation, "message rejected")).
		WithTextCode(codeMessageInvalid)
}

func wrapContextError(err error, operation string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, describe(operation, "run canceled")).
			WithTextCode(codeRunCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, describe(operation, "run timed out")).
			WithTextCode(codeRunTimedOut)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, describe(operation, "context failed")).
			WithTextCode(codeContextBroken)
	}
}

func wrapExecuteError(err error, operation string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, describe(operation, "run failed")).
		WithTextCode(codeRunFailed)
}

func describe(operation, outcome string) string {
	if operation == "" {
		operation = "command"
	}
	return operation + ": " + outcome
}
