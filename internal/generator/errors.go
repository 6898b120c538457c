package generator

import (
	"errors"
	"fmt"

	"github.com/Jeff0327/adsblog/internal/ai"
)

// Kind classifies a failed run. Provider and parser failures carry the
// corresponding ai.Kind value.
type Kind string

const (
	KindConfigNotFound     Kind = "ConfigNotFound"
	KindStoreFailure       Kind = "StoreFailure"
	KindPersistenceFailure Kind = "PersistenceFailure"

	KindMissingCredentials  = Kind(ai.KindMissingCredentials)
	KindUnsupportedProvider = Kind(ai.KindUnsupportedProvider)
	KindAuthFailure         = Kind(ai.KindAuthFailure)
	KindRateLimited         = Kind(ai.KindRateLimited)
	KindInvalidResponse     = Kind(ai.KindInvalidResponse)
	KindNetworkFailure      = Kind(ai.KindNetworkFailure)
	KindUnparsableResponse  = Kind(ai.KindUnparsableResponse)
	KindIncompleteContent   = Kind(ai.KindIncompleteContent)
)

// IsConfiguration reports whether k is an operator configuration error.
func (k Kind) IsConfiguration() bool {
	switch k {
	case KindConfigNotFound, KindMissingCredentials, KindUnsupportedProvider:
		return true
	}
	return false
}

// IsUpstream reports whether k is a provider or response-parsing failure.
func (k Kind) IsUpstream() bool {
	switch k {
	case KindAuthFailure, KindRateLimited, KindInvalidResponse, KindNetworkFailure,
		KindUnparsableResponse, KindIncompleteContent:
		return true
	}
	return false
}

// Stage names the step of a run that failed.
type Stage string

const (
	StageConfig   Stage = "config"
	StageTopic    Stage = "topic"
	StageGenerate Stage = "generate"
	StageParse    Stage = "parse"
	StageSlug     Stage = "slug"
	StagePersist  Stage = "persist"
)

// RunError is the structured failure of a run. Details carries the upstream
// provider's error payload when one was received.
type RunError struct {
	RunID    string
	Kind     Kind
	Stage    Stage
	Provider string
	Message  string
	Details  string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("generation %s failed at %s: %s", e.Kind, e.Stage, e.Message)
	if e.Provider != "" {
		msg += " (provider " + e.Provider + ")"
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// AsRunError returns the *RunError in err's chain, if any.
func AsRunError(err error) (*RunError, bool) {
	var runErr *RunError
	ok := errors.As(err, &runErr)
	return runErr, ok
}

// fromAI converts an adapter or parser failure into a RunError.
func fromAI(stage Stage, provider ai.ProviderName, err error) *RunError {
	runErr := &RunError{
		Stage:    stage,
		Provider: string(provider),
		Message:  err.Error(),
		Err:      err,
	}

	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		runErr.Kind = Kind(aiErr.Kind)
		runErr.Details = aiErr.Payload
		if aiErr.Message != "" {
			runErr.Message = aiErr.Message
		}
		if aiErr.Provider != "" {
			runErr.Provider = string(aiErr.Provider)
		}
		return runErr
	}

	// Anything unclassified from a provider is treated as a transport problem.
	runErr.Kind = KindNetworkFailure
	return runErr
}
