package models

import "time"

// Comment is a reply attached to exactly one post, ordered newest first.
// DisplayName and Avatar snapshot the commenter's profile at creation time.
type Comment struct {
	ID          int64     `json:"id"`
	Author      int64     `json:"author"`
	Text        string    `json:"text"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatarRef"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateCommentRequest is the body of POST /posts/comment/{postID}.
type CreateCommentRequest struct {
	Text string `json:"text"`
}
