package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"devlink-social-network/database"
	"devlink-social-network/models"
	"devlink-social-network/util"
)

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     util.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

// RegisterHandler handles user registration. The display name and avatar
// captured here are what later gets snapshotted onto posts and comments.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		serverError(w)
		return
	}

	result, err := database.DB.Exec(`
        INSERT INTO users (username, email, password_hash, display_name, avatar, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, req.Username, req.Email, string(hashedPassword), req.DisplayName, req.Avatar, time.Now())
	if err != nil {
		log.Printf("Error inserting user %q: %v", req.Username, err)
		writeMsg(w, http.StatusBadRequest, "username or email already taken")
		return
	}

	userID, err := result.LastInsertId()
	if err != nil {
		log.Printf("Error getting last insert ID for user: %v", err)
		serverError(w)
		return
	}

	sessionToken, err := util.CreateSession(userID)
	if err != nil {
		log.Printf("Failed to create session for new user %d after registration: %v", userID, err)
	} else {
		setSessionCookie(w, sessionToken)
		log.Printf("User %s (ID: %d) registered and session created.", req.Username, userID)
	}

	writeJSON(w, http.StatusCreated, models.UserResponse{
		ID:          userID,
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
	})
}

// LoginHandler handles user login by username or email.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "username/email and password are required")
		return
	}

	var u models.UserResponse
	var passwordHash string
	var avatar sql.NullString
	err := database.DB.QueryRow(`
        SELECT id, username, email, password_hash, display_name, avatar
        FROM users
        WHERE username = ? OR email = ?
    `, identifier, identifier).Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &u.DisplayName, &avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeMsg(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("Error querying user %q for login: %v", identifier, err)
		serverError(w)
		return
	}
	u.Avatar = avatar.String

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		writeMsg(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sessionToken, err := util.CreateSession(u.ID)
	if err != nil {
		log.Printf("Failed to create session for user %d: %v", u.ID, err)
		serverError(w)
		return
	}
	setSessionCookie(w, sessionToken)

	log.Printf("User %s (ID: %d) logged in.", u.Username, u.ID)
	writeJSON(w, http.StatusOK, u)
}

// LogoutHandler invalidates the current session and expires the cookie.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(util.SessionCookieName)
	if err == nil && cookie.Value != "" {
		util.DeleteSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     util.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeMsg(w, http.StatusOK, "logged out")
}

// CheckAuthHandler returns 200 iff the session cookie is valid; it runs
// behind AuthMiddleware, so reaching it means the session checked out.
func CheckAuthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Authenticated request"))
}
