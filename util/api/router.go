package api

import (
	"net/http"

	"devlink-social-network/middleware"
)

// NewRouter wires every route. All /posts routes require a session; the
// engagement paths mirror the client contract:
// PUT /posts/like/{id}, PUT /posts/unlike/{id},
// POST /posts/comment/{id}, DELETE /posts/comment/{id}/{commentId}.
func NewRouter() *http.ServeMux {
	mux := http.NewServeMux()

	auth := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}

	// Auth handlers
	mux.HandleFunc("POST /register", RegisterHandler)
	mux.HandleFunc("POST /login", LoginHandler)
	mux.HandleFunc("POST /logout", LogoutHandler)
	mux.Handle("GET /checkAuth", auth(CheckAuthHandler))

	// Post handlers
	mux.Handle("POST /posts", auth(CreatePostHandler))
	mux.Handle("GET /posts", auth(GetPostsHandler))
	mux.Handle("GET /posts/{postID}", auth(GetPostHandler))
	mux.Handle("DELETE /posts/{postID}", auth(DeletePostHandler))

	// Like handlers
	mux.Handle("PUT /posts/like/{postID}", auth(LikePostHandler))
	mux.Handle("PUT /posts/unlike/{postID}", auth(UnlikePostHandler))

	// Comment handlers
	mux.Handle("POST /posts/comment/{postID}", auth(CreateCommentHandler))
	mux.Handle("DELETE /posts/comment/{postID}/{commentID}", auth(DeleteCommentHandler))

	return mux
}
