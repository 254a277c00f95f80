package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbedding marks a failure of the embedding model for one text.
	ErrEmbedding = errors.New("embedding failed")
	// ErrEmbeddingUnavailable marks an embedding backend that cannot serve any
	// request: unreachable, unauthorized or failing server side.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
	// ErrStoreWrite marks a failed bulk write for a whole partition.
	ErrStoreWrite = errors.New("store write failed")
	// ErrStoreQuery marks a failed search against the document store.
	ErrStoreQuery = errors.New("store query failed")
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// ConfigError is raised at startup when configuration or credentials are unusable.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfig(source string, err error) *ConfigError {
	return &ConfigError{Source: source, Err: err}
}

// ParseError reports an article file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
