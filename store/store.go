package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"devlink-social-network/models"
)

// Store owns persisted post documents and their engagement state. Every
// mutation runs in a single transaction; with the immediate-txlock DSN the
// database serializes writers at BEGIN, so concurrent like/unlike and
// comment add/remove calls against the same post cannot lose updates.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx, so the engagement
// loaders can run inside or outside a transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreatePost inserts a new post by authorID, snapshotting the author's
// display name and avatar at creation time. The caller validates that text
// is non-empty before this is reached.
func (s *Store) CreatePost(ctx context.Context, authorID int64, text string) (*models.Post, error) {
	displayName, avatar, err := s.authorSnapshot(ctx, s.db, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
        INSERT INTO posts (author_id, text, display_name, avatar, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, authorID, text, displayName, avatar, now)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	postID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("post insert id: %w", err)
	}

	return &models.Post{
		ID:          postID,
		Author:      authorID,
		Text:        text,
		DisplayName: displayName,
		Avatar:      avatar,
		CreatedAt:   now,
		Likes:       []models.Like{},
		Comments:    []models.Comment{},
	}, nil
}

// GetPost loads a single post with its likes and comments.
func (s *Store) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	return s.getPost(ctx, s.db, postID)
}

func (s *Store) getPost(ctx context.Context, q queryer, postID int64) (*models.Post, error) {
	var p models.Post
	var avatar sql.NullString
	err := q.QueryRowContext(ctx, `
        SELECT id, author_id, text, display_name, avatar, created_at
        FROM posts
        WHERE id = ?
    `, postID).Scan(&p.ID, &p.Author, &p.Text, &p.DisplayName, &avatar, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("select post %d: %w", postID, err)
	}
	p.Avatar = avatar.String

	if p.Likes, err = s.likesForPost(ctx, q, postID); err != nil {
		return nil, err
	}
	if p.Comments, err = s.commentsForPost(ctx, q, postID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, author_id, text, display_name, avatar, created_at
        FROM posts
        ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		var avatar sql.NullString
		if err := rows.Scan(&p.ID, &p.Author, &p.Text, &p.DisplayName, &avatar, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Avatar = avatar.String
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if posts[i].Likes, err = s.likesForPost(ctx, s.db, posts[i].ID); err != nil {
			return nil, err
		}
		if posts[i].Comments, err = s.commentsForPost(ctx, s.db, posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// DeletePost removes a post together with its likes and comments. Only the
// post's author may delete it. The whole removal is one transaction, so a
// like racing the delete can never leave an orphaned row behind.
func (s *Store) DeletePost(ctx context.Context, postID, requestingUser int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete post %d: %w", postID, err)
	}
	defer tx.Rollback()

	var authorID int64
	err = tx.QueryRowContext(ctx, "SELECT author_id FROM posts WHERE id = ?", postID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return fmt.Errorf("select post %d author: %w", postID, err)
	}
	if authorID != requestingUser {
		return ErrNotPostAuthor
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM post_likes WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("delete likes for post %d: %w", postID, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("delete comments for post %d: %w", postID, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", postID); err != nil {
		return fmt.Errorf("delete post %d: %w", postID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete post %d: %w", postID, err)
	}
	return nil
}

// authorSnapshot reads the profile fields copied onto posts and comments at
// creation time.
func (s *Store) authorSnapshot(ctx context.Context, q queryer, userID int64) (string, string, error) {
	var displayName string
	var avatar sql.NullString
	err := q.QueryRowContext(ctx, "SELECT display_name, avatar FROM users WHERE id = ?", userID).
		Scan(&displayName, &avatar)
	if err != nil {
		return "", "", fmt.Errorf("select user %d profile: %w", userID, err)
	}
	return displayName, avatar.String, nil
}

func (s *Store) postExists(ctx context.Context, q queryer, postID int64) error {
	var exists bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check post %d exists: %w", postID, err)
	}
	if !exists {
		return ErrPostNotFound
	}
	return nil
}
