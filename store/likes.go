package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"devlink-social-network/models"
)

// LikePost records userID's like on a post and returns the updated like
// sequence, newest first. A second like from the same user fails with
// ErrAlreadyLiked and leaves the ledger untouched.
func (s *Store) LikePost(ctx context.Context, postID, userID int64) ([]models.Like, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin like post %d: %w", postID, err)
	}
	defer tx.Rollback()

	if err = s.postExists(ctx, tx, postID); err != nil {
		return nil, err
	}

	var liked bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?)",
		postID, userID).Scan(&liked)
	if err != nil {
		return nil, fmt.Errorf("check like on post %d by user %d: %w", postID, userID, err)
	}
	if liked {
		return nil, ErrAlreadyLiked
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO post_likes (post_id, user_id, created_at)
        VALUES (?, ?, ?)
    `, postID, userID, time.Now())
	if err != nil {
		// The UNIQUE(post_id, user_id) constraint is the backstop for the
		// check above; treat a constraint hit as the duplicate it is.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("insert like on post %d by user %d: %w", postID, userID, err)
	}

	likes, err := s.likesForPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit like on post %d: %w", postID, err)
	}
	return likes, nil
}

// UnlikePost removes userID's like from a post and returns the updated like
// sequence. Unliking a post the user never liked fails with ErrNotLiked.
func (s *Store) UnlikePost(ctx context.Context, postID, userID int64) ([]models.Like, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unlike post %d: %w", postID, err)
	}
	defer tx.Rollback()

	if err = s.postExists(ctx, tx, postID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID)
	if err != nil {
		return nil, fmt.Errorf("delete like on post %d by user %d: %w", postID, userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unlike post %d rows affected: %w", postID, err)
	}
	if affected == 0 {
		return nil, ErrNotLiked
	}

	likes, err := s.likesForPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unlike on post %d: %w", postID, err)
	}
	return likes, nil
}

func (s *Store) likesForPost(ctx context.Context, q queryer, postID int64) ([]models.Like, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY id DESC", postID)
	if err != nil {
		return nil, fmt.Errorf("select likes for post %d: %w", postID, err)
	}
	defer rows.Close()

	likes := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.User); err != nil {
			return nil, fmt.Errorf("scan like for post %d: %w", postID, err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes for post %d: %w", postID, err)
	}
	return likes, nil
}
