package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"devlink-social-network/models"
)

// AddComment appends a comment by userID to a post, snapshotting the
// commenter's profile, and returns the updated comment sequence, newest
// first. The caller validates that text is non-empty.
func (s *Store) AddComment(ctx context.Context, postID, userID int64, text string) ([]models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin comment on post %d: %w", postID, err)
	}
	defer tx.Rollback()

	if err = s.postExists(ctx, tx, postID); err != nil {
		return nil, err
	}

	displayName, avatar, err := s.authorSnapshot(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO comments (post_id, author_id, text, display_name, avatar, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, postID, userID, text, displayName, avatar, time.Now())
	if err != nil {
		return nil, fmt.Errorf("insert comment on post %d by user %d: %w", postID, userID, err)
	}

	comments, err := s.commentsForPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit comment on post %d: %w", postID, err)
	}
	return comments, nil
}

// RemoveComment deletes the comment with commentID from a post and returns
// the updated sequence. Only the comment's author may remove it. Removal is
// keyed strictly by the comment id, so an author with several comments on
// the same post always loses exactly the one they asked for.
func (s *Store) RemoveComment(ctx context.Context, postID, commentID, requestingUser int64) ([]models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin remove comment %d: %w", commentID, err)
	}
	defer tx.Rollback()

	if err = s.postExists(ctx, tx, postID); err != nil {
		return nil, err
	}

	var authorID int64
	err = tx.QueryRowContext(ctx,
		"SELECT author_id FROM comments WHERE id = ? AND post_id = ?",
		commentID, postID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("select comment %d author: %w", commentID, err)
	}
	if authorID != requestingUser {
		return nil, ErrNotCommentAuthor
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", commentID); err != nil {
		return nil, fmt.Errorf("delete comment %d: %w", commentID, err)
	}

	comments, err := s.commentsForPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit remove comment %d: %w", commentID, err)
	}
	return comments, nil
}

func (s *Store) commentsForPost(ctx context.Context, q queryer, postID int64) ([]models.Comment, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, author_id, text, display_name, avatar, created_at
        FROM comments
        WHERE post_id = ?
        ORDER BY id DESC
    `, postID)
	if err != nil {
		return nil, fmt.Errorf("select comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var avatar sql.NullString
		if err := rows.Scan(&c.ID, &c.Author, &c.Text, &c.DisplayName, &avatar, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment for post %d: %w", postID, err)
		}
		c.Avatar = avatar.String
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments for post %d: %w", postID, err)
	}
	return comments, nil
}
