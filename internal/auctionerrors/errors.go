package auctionerrors

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them,
// so callers can match either the category or the precise reason.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoBids       = errors.New("no bids")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Repository-level errors
var (
	ErrAuctionNotFound = fmt.Errorf("auction not found: %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("email already registered: %w", ErrConflict)
)

// business logic errors
var (
	ErrBiddingNotOpen   = fmt.Errorf("bidding not open: %w", ErrInvalidState)
	ErrNotYetStarted    = fmt.Errorf("auction has not started yet: %w", ErrInvalidState)
	ErrAlreadyClosed    = fmt.Errorf("auction already closed: %w", ErrInvalidState)
	ErrAuctionNotClosed = fmt.Errorf("auction has not closed: %w", ErrInvalidState)

	ErrInvalidAmount   = fmt.Errorf("bid amount too low: %w", ErrInvalidInput)
	ErrInvalidSchedule = fmt.Errorf("end time must be after start time: %w", ErrInvalidInput)
	ErrInvalidBid      = fmt.Errorf("invalid bid: %w", ErrInvalidInput)
	ErrInvalidAuction  = fmt.Errorf("invalid auction details: %w", ErrInvalidInput)

	ErrNotWinner          = fmt.Errorf("only the winning bidder can check out: %w", ErrForbidden)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)
