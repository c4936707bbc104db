package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"devlink-social-network/models"
	"devlink-social-network/store"
)

// CreatePostHandler handles POST /posts.
func CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in session context.", http.StatusUnauthorized)
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeMsg(w, http.StatusBadRequest, "text is required")
		return
	}

	post, err := Posts.CreatePost(r.Context(), userID, req.Text)
	if err != nil {
		log.Printf("Error creating post for user %d: %v", userID, err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// GetPostsHandler handles GET /posts, newest first.
func GetPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := Posts.ListPosts(r.Context())
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// GetPostHandler handles GET /posts/{postID}.
func GetPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeMsg(w, http.StatusNotFound, "invalid post id")
		return
	}

	post, err := Posts.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			writeMsg(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("Error fetching post %d: %v", postID, err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePostHandler handles DELETE /posts/{postID}. Only the author may
// delete a post.
func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
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

	switch err := Posts.DeletePost(r.Context(), postID, userID); {
	case err == nil:
		log.Printf("User %d deleted post %d", userID, postID)
		writeMsg(w, http.StatusOK, "post removed")
	case errors.Is(err, store.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "post not found")
	case errors.Is(err, store.ErrNotPostAuthor):
		writeMsg(w, http.StatusUnauthorized, "not authorized")
	default:
		log.Printf("Error deleting post %d by user %d: %v", postID, userID, err)
		serverError(w)
	}
}
