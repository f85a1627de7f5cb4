package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/app/models"
)

func newProfileFixture(t *testing.T) (*fixture, *ProfileService) {
	t.Helper()
	f := newFixture(t)
	return f, NewProfileService(f.store.Users(), f.store.Posts())
}

func TestProfileListIncludesHiddenPosts(t *testing.T) {
	f, profiles := newProfileFixture(t)

	f.addPost(t, f.alice, f.news, -time.Hour, "Visible")
	f.addPost(t, f.alice, f.news, 24*time.Hour, "Scheduled")
	f.addPost(t, f.alice, f.offAir, -time.Hour, "Hidden category")
	f.addPost(t, f.bob, f.news, -time.Hour, "Someone else's")

	draft := &models.Post{
		Title: "Draft", Text: "unpublished", PubDate: f.now.Add(-2 * time.Hour),
		AuthorID: f.alice.ID, CategoryID: &f.news.ID,
	}
	require.NoError(t, f.store.Posts().Create(draft))

	// The profile page shows everything alice wrote, to anyone.
	user, page, err := profiles.ListPosts("alice", 1)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, user.ID)
	assert.Len(t, page.Posts, 4)
	assert.Equal(t, 4, page.Total)

	titles := make([]string, len(page.Posts))
	for i, p := range page.Posts {
		titles[i] = p.Title
	}
	assert.Equal(t, []string{"Scheduled", "Visible", "Hidden category", "Draft"}, titles)
}

func TestProfileListMissingUser(t *testing.T) {
	_, profiles := newProfileFixture(t)

	_, _, err := profiles.ListPosts("ghost", 1)
	assert.True(t, IsNotFound(err))
}

func TestProfileUpdateOwnership(t *testing.T) {
	f, profiles := newProfileFixture(t)

	update := ProfileUpdate{
		FirstName: "Alice",
		LastName:  "Liddell",
		Username:  "alice",
		Email:     "alice@example.com",
	}

	// Bob cannot edit alice's profile even though the URL names it.
	_, err := profiles.Update(f.bob.ID, "alice", update)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := profiles.Update(f.alice.ID, "alice", update)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Liddell", updated.LastName)
}

func TestProfileUpdateRename(t *testing.T) {
	f, profiles := newProfileFixture(t)

	update := ProfileUpdate{Username: "wonderland", Email: "alice@example.com"}
	updated, err := profiles.Update(f.alice.ID, "alice", update)
	require.NoError(t, err)
	assert.Equal(t, "wonderland", updated.Username)

	// The old name no longer resolves; the new one does.
	_, err = profiles.Get("alice")
	assert.True(t, IsNotFound(err))
	found, err := profiles.Get("wonderland")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, found.ID)
}

func TestProfileUpdateRenameCollision(t *testing.T) {
	f, profiles := newProfileFixture(t)

	update := ProfileUpdate{Username: "bob", Email: "alice@example.com"}
	_, err := profiles.Update(f.alice.ID, "alice", update)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestProfileUpdateValidation(t *testing.T) {
	f, profiles := newProfileFixture(t)

	_, err := profiles.Update(f.alice.ID, "alice", ProfileUpdate{Username: "", Email: "bad"})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "email")
}
