package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// user
var (
	ErrUserNameNotAvailable = errors.New("user name is not available")
	ErrEMailAddressTaken    = errors.New("email-address is already used")
	ErrInvalidUser          = errors.New("invalid user name or password")
	ErrInvalidPassword      = errors.New("password does not meet rules")
)

// document / ingestion
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrContentMissing  = errors.New("document content is required")
	ErrTitleMissing    = errors.New("document title is required")
	ErrNothingToIngest = errors.New("no documents given")
)

// vote
// ErrDocumentNotFound maps to 404 - the target of a vote must exist
var (
	ErrDocumentNotFound = errors.New("no document with that id")
	ErrInvalidVoteType  = errors.New("vote must be 'up' or 'down'")
)

// search
var (
	ErrQueryMissing = errors.New("query must not be empty")
)
