package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"devlink-social-network/database"
	"devlink-social-network/models"
)

// newTestStore opens a temp-file database. A file (not :memory:) because the
// pool hands out multiple connections and each :memory: connection would get
// its own empty database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store_test.db")
	db, err := sql.Open("sqlite3", database.DSN(path))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.CreateTables(db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return New(db)
}

func seedUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()

	result, err := s.db.Exec(`
        INSERT INTO users (username, email, password_hash, display_name, avatar, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, username, username+"@example.com", "hash", username, "https://example.com/"+username+".png", time.Now())
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to get seeded user id: %v", err)
	}
	return id
}

func likeUsers(likes []models.Like) []int64 {
	users := make([]int64, len(likes))
	for i, l := range likes {
		users[i] = l.User
	}
	return users
}

func TestCreatePostSnapshotsAuthor(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if post.Author != u1 {
		t.Errorf("author = %d, want %d", post.Author, u1)
	}
	if post.Text != "hello" {
		t.Errorf("text = %q, want %q", post.Text, "hello")
	}
	if post.DisplayName != "alice" {
		t.Errorf("displayName = %q, want %q", post.DisplayName, "alice")
	}
	if post.Avatar != "https://example.com/alice.png" {
		t.Errorf("avatar = %q", post.Avatar)
	}
	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Errorf("new post should have no engagement, got %d likes, %d comments",
			len(post.Likes), len(post.Comments))
	}

	// A later profile change must not rewrite the snapshot.
	if _, err := s.db.Exec("UPDATE users SET display_name = 'renamed' WHERE id = ?", u1); err != nil {
		t.Fatalf("failed to rename user: %v", err)
	}
	got, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.DisplayName != "alice" {
		t.Errorf("snapshot displayName = %q after profile change, want %q", got.DisplayName, "alice")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetPost(context.Background(), 42); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("GetPost on missing id = %v, want ErrPostNotFound", err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		post, err := s.CreatePost(context.Background(), u1, text)
		if err != nil {
			t.Fatalf("CreatePost(%q) failed: %v", text, err)
		}
		ids = append(ids, post.ID)
	}

	posts, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	for i, want := range []int64{ids[2], ids[1], ids[0]} {
		if posts[i].ID != want {
			t.Errorf("posts[%d].ID = %d, want %d", i, posts[i].ID, want)
		}
	}
}

func TestLikeTwiceSameUser(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	likes, err := s.LikePost(context.Background(), post.ID, u2)
	if err != nil {
		t.Fatalf("first like failed: %v", err)
	}
	if len(likes) != 1 || likes[0].User != u2 {
		t.Fatalf("likes = %+v, want exactly [{user:%d}]", likes, u2)
	}

	if _, err := s.LikePost(context.Background(), post.ID, u2); !errors.Is(err, ErrAlreadyLiked) {
		t.Errorf("second like = %v, want ErrAlreadyLiked", err)
	}

	got, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if len(got.Likes) != 1 {
		t.Errorf("likes grew to %d after rejected duplicate, want 1", len(got.Likes))
	}
}

func TestUnlikeWithoutLike(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := s.UnlikePost(context.Background(), post.ID, u2); !errors.Is(err, ErrNotLiked) {
		t.Errorf("unlike without like = %v, want ErrNotLiked", err)
	}
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")
	u3 := seedUser(t, s, "carol")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := s.LikePost(context.Background(), post.ID, u2); err != nil {
		t.Fatalf("like by u2 failed: %v", err)
	}
	likes, err := s.LikePost(context.Background(), post.ID, u3)
	if err != nil {
		t.Fatalf("like by u3 failed: %v", err)
	}
	// Newest first.
	if got := likeUsers(likes); got[0] != u3 || got[1] != u2 {
		t.Errorf("likes order = %v, want [%d %d]", got, u3, u2)
	}

	likes, err = s.UnlikePost(context.Background(), post.ID, u3)
	if err != nil {
		t.Fatalf("unlike by u3 failed: %v", err)
	}
	if len(likes) != 1 || likes[0].User != u2 {
		t.Errorf("likes after round trip = %+v, want only u2 (%d)", likes, u2)
	}
}

func TestLikePostNotFound(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")

	if _, err := s.LikePost(context.Background(), 42, u1); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("like on missing post = %v, want ErrPostNotFound", err)
	}
	if _, err := s.UnlikePost(context.Background(), 42, u1); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("unlike on missing post = %v, want ErrPostNotFound", err)
	}
}

func TestCommentOrdering(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := s.AddComment(context.Background(), post.ID, u2, "C1"); err != nil {
		t.Fatalf("first comment failed: %v", err)
	}
	comments, err := s.AddComment(context.Background(), post.ID, u2, "C2")
	if err != nil {
		t.Fatalf("second comment failed: %v", err)
	}

	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Text != "C2" || comments[1].Text != "C1" {
		t.Errorf("comment order = [%q %q], want [C2 C1]", comments[0].Text, comments[1].Text)
	}
	if comments[0].DisplayName != "bob" {
		t.Errorf("comment displayName = %q, want %q", comments[0].DisplayName, "bob")
	}
}

func TestRemoveCommentUnauthorized(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")
	u3 := seedUser(t, s, "carol")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	comments, err := s.AddComment(context.Background(), post.ID, u2, "bob's comment")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	_, err = s.RemoveComment(context.Background(), post.ID, comments[0].ID, u3)
	if !errors.Is(err, ErrNotCommentAuthor) {
		t.Errorf("removal by non-author = %v, want ErrNotCommentAuthor", err)
	}

	got, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Errorf("comment count = %d after rejected removal, want 1", len(got.Comments))
	}
}

// Removal must be keyed by the requested comment id, not by the first comment
// the requesting user authored.
func TestRemoveCommentTargetsRequestedID(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := s.AddComment(context.Background(), post.ID, u1, "keep me"); err != nil {
		t.Fatalf("first comment failed: %v", err)
	}
	comments, err := s.AddComment(context.Background(), post.ID, u1, "remove me")
	if err != nil {
		t.Fatalf("second comment failed: %v", err)
	}
	target := comments[0] // newest first, so this is "remove me"
	if target.Text != "remove me" {
		t.Fatalf("unexpected target comment %q", target.Text)
	}

	remaining, err := s.RemoveComment(context.Background(), post.ID, target.ID, u1)
	if err != nil {
		t.Fatalf("RemoveComment failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Text != "keep me" {
		t.Errorf("remaining comments = %+v, want only %q", remaining, "keep me")
	}
}

func TestRemoveCommentNotFound(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := s.RemoveComment(context.Background(), post.ID, 999, u1); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("removal of missing comment = %v, want ErrCommentNotFound", err)
	}
}

func TestDeletePostUnauthorized(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := s.DeletePost(context.Background(), post.ID, u2); !errors.Is(err, ErrNotPostAuthor) {
		t.Errorf("delete by non-author = %v, want ErrNotPostAuthor", err)
	}
	if _, err := s.GetPost(context.Background(), post.ID); err != nil {
		t.Errorf("post should survive rejected delete, got %v", err)
	}
}

func TestDeletePostRemovesEngagement(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "alice")
	u2 := seedUser(t, s, "bob")

	post, err := s.CreatePost(context.Background(), u1, "hello")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := s.LikePost(context.Background(), post.ID, u2); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}
	if _, err := s.AddComment(context.Background(), post.ID, u2, "nice"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	if err := s.DeletePost(context.Background(), post.ID, u1); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPost(context.Background(), post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("GetPost after delete = %v, want ErrPostNotFound", err)
	}

	var orphans int
	if err := s.db.QueryRow(
		"SELECT (SELECT COUNT(*) FROM post_likes WHERE post_id = ?) + (SELECT COUNT(*) FROM comments WHERE post_id = ?)",
		post.ID, post.ID).Scan(&orphans); err != nil {
		t.Fatalf("orphan count query failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("found %d orphaned engagement rows after delete", orphans)
	}
}

// A like racing the post's deletion must resolve cleanly: either the like
// commits first and the delete sweeps it, or the like fails not-found. Never
// an orphaned like row for a deleted post.
func TestDeleteRacingLikeLeavesNoOrphans(t *testing.T) {
	s := newTestStore(t)
	author := seedUser(t, s, "author")
	liker := seedUser(t, s, "liker")

	for i := 0; i < 20; i++ {
		post, err := s.CreatePost(context.Background(), author, fmt.Sprintf("round %d", i))
		if err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}

		var wg sync.WaitGroup
		var likeErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, likeErr = s.LikePost(context.Background(), post.ID, liker)
		}()
		go func() {
			defer wg.Done()
			deleteErr = s.DeletePost(context.Background(), post.ID, author)
		}()
		wg.Wait()

		if deleteErr != nil {
			t.Fatalf("round %d: DeletePost failed: %v", i, deleteErr)
		}
		if likeErr != nil && !errors.Is(likeErr, ErrPostNotFound) {
			t.Fatalf("round %d: LikePost = %v, want nil or ErrPostNotFound", i, likeErr)
		}

		var orphans int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM post_likes WHERE post_id = ?", post.ID).Scan(&orphans); err != nil {
			t.Fatalf("round %d: orphan count query failed: %v", i, err)
		}
		if orphans != 0 {
			t.Fatalf("round %d: %d orphaned like rows for deleted post (likeErr=%v)", i, orphans, likeErr)
		}
	}
}

// N concurrent likes from N distinct users must all land: no lost updates
// under any interleaving.
func TestConcurrentLikesDistinctUsers(t *testing.T) {
	s := newTestStore(t)
	author := seedUser(t, s, "author")

	post, err := s.CreatePost(context.Background(), author, "race me")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	const n = 8
	users := make([]int64, n)
	for i := range users {
		users[i] = seedUser(t, s, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.LikePost(context.Background(), post.ID, users[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("like by user %d failed: %v", users[i], err)
		}
	}

	got, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if len(got.Likes) != n {
		t.Fatalf("final likes count = %d, want %d (lost updates)", len(got.Likes), n)
	}
	seen := map[int64]bool{}
	for _, l := range got.Likes {
		if seen[l.User] {
			t.Errorf("duplicate like for user %d", l.User)
		}
		seen[l.User] = true
	}
	for _, u := range users {
		if !seen[u] {
			t.Errorf("like by user %d missing from final set", u)
		}
	}
}
