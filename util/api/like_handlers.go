package api

import (
	"errors"
	"log"
	"net/http"

	"devlink-social-network/store"
)

// LikePostHandler handles PUT /posts/like/{postID}. Liking a post twice from
// the same user is rejected with 400 and leaves the ledger unchanged.
func LikePostHandler(w http.ResponseWriter, r *http.Request) {
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

	likes, err := Posts.LikePost(r.Context(), postID, userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, likes)
	case errors.Is(err, store.ErrAlreadyLiked):
		writeMsg(w, http.StatusBadRequest, "already liked")
	case errors.Is(err, store.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "post not found")
	default:
		log.Printf("Error liking post %d by user %d: %v", postID, userID, err)
		serverError(w)
	}
}

// UnlikePostHandler handles PUT /posts/unlike/{postID}.
func UnlikePostHandler(w http.ResponseWriter, r *http.Request) {
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

	likes, err := Posts.UnlikePost(r.Context(), postID, userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, likes)
	case errors.Is(err, store.ErrNotLiked):
		writeMsg(w, http.StatusBadRequest, "post not liked, cannot unlike")
	case errors.Is(err, store.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "post not found")
	default:
		log.Printf("Error unliking post %d by user %d: %v", postID, userID, err)
		serverError(w)
	}
}
