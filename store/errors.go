package store

import "errors"

// Domain errors returned by the store. Handlers map these onto the response
// contract; anything else is an unexpected storage failure.
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotPostAuthor    = errors.New("requesting user is not the post author")
	ErrNotCommentAuthor = errors.New("requesting user is not the comment author")
	ErrAlreadyLiked     = errors.New("post already liked by user")
	ErrNotLiked         = errors.New("post not liked by user")
)
