package models

// Like is one user's endorsement of a post. Set-like: a post holds at most
// one Like per user, newest first.
type Like struct {
	User int64 `json:"user"`
}
