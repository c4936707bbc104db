package models

import "time"

// Post is the persisted post document: the text item itself plus its
// engagement state. DisplayName and Avatar are a snapshot of the author's
// profile taken at creation time, never re-joined against the users table.
type Post struct {
	ID          int64     `json:"id"`
	Author      int64     `json:"author"`
	Text        string    `json:"text"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatarRef"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       []Like    `json:"likes"`
	Comments    []Comment `json:"comments"`
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Text string `json:"text"`
}

// MessageResponse is the generic {"msg": ...} body used for domain errors
// and for the delete-post success response.
type MessageResponse struct {
	Msg string `json:"msg"`
}
