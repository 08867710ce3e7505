package domain

import "errors"

// Like errors
var (
	ErrInvalidLikeKind   = errors.New("invalid like kind")
	ErrMissingLikeTarget = errors.New("like target id is required")
	ErrMissingLiker      = errors.New("like owner is required")
)

// Ownership and lookup errors shared by the CRUD services
var (
	ErrNotOwner         = errors.New("only the owner can perform this action")
	ErrVideoNotFound    = errors.New("video not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrTweetNotFound    = errors.New("tweet not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrSelfSubscription = errors.New("cannot subscribe to own channel")
)
