package entity

import "errors"

var (
	// Comment errors
	ErrCommentNotFound    = errors.New("comment not found")
	ErrEmptyContent       = errors.New("comment content cannot be empty")
	ErrParentNotFound     = errors.New("parent comment not found")
	ErrParentPostMismatch = errors.New("parent comment belongs to a different post")

	// Post errors
	ErrPostNotFound = errors.New("post not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden operation")
	ErrInternal     = errors.New("internal server error")
)
