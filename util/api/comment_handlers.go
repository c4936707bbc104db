package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"devlink-social-network/models"
	"devlink-social-network/store"
)

// CreateCommentHandler handles POST /posts/comment/{postID} and returns the
// full updated comment sequence, newest first.
func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in session context.", http.StatusUnauthorized)
		return
	}

	postID, err := pathID(r, "postID")
	if err != nil {
		writeMsg(w, http.StatusNotFound, "invalid post id")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeMsg(w, http.StatusBadRequest, "text is required")
		return
	}

	comments, err := Posts.AddComment(r.Context(), postID, userID, req.Text)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, comments)
	case errors.Is(err, store.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "post not found")
	default:
		log.Printf("Error commenting on post %d by user %d: %v", postID, userID, err)
		serverError(w)
	}
}

// DeleteCommentHandler handles DELETE /posts/comment/{postID}/{commentID}.
// Only the comment's author may remove it.
func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in session context.", http.StatusUnauthorized)
		return
	}

	postID, err := pathID(r, "postID")
	if err != nil {
		writeMsg(w, http.StatusNotFound, "invalid post id")
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		writeMsg(w, http.StatusNotFound, "comment not found")
		return
	}

	comments, err := Posts.RemoveComment(r.Context(), postID, commentID, userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, comments)
	case errors.Is(err, store.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "post not found")
	case errors.Is(err, store.ErrCommentNotFound):
		writeMsg(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, store.ErrNotCommentAuthor):
		writeMsg(w, http.StatusUnauthorized, "unauthorized action")
	default:
		log.Printf("Error removing comment %d on post %d by user %d: %v", commentID, postID, userID, err)
		serverError(w)
	}
}
