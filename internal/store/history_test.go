package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/backend/internal/models"
)

func TestHistoryStore_CreateAndList(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)

	first, err := history.Create(alice.ID, models.HistorySearch, "oldest", "r1", nil)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	// Force distinct timestamps so ordering is deterministic
	db.Model(first).Update("created_at", time.Now().Add(-time.Hour))

	_, err = history.Create(alice.ID, models.HistoryImage, "newest", "r2", nil)
	require.NoError(t, err)

	entries, err := history.ListForUser(alice.ID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newest", entries[0].Query) // reverse-chronological
	assert.Equal(t, "oldest", entries[1].Query)
}

func TestHistoryStore_Filters(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)
	bob := createUser(t, users, "bob", models.RoleUser)

	_, err := history.Create(alice.ID, models.HistorySearch, "golang tutorials", "use interfaces", nil)
	require.NoError(t, err)
	_, err = history.Create(alice.ID, models.HistoryImage, "a red fox", "http://img/fox.png", nil)
	require.NoError(t, err)
	_, err = history.Create(bob.ID, models.HistorySearch, "golang generics", "type parameters", nil)
	require.NoError(t, err)

	// Rows are scoped to their owner
	mine, err := history.ListForUser(alice.ID, HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byType, err := history.ListForUser(alice.ID, HistoryFilter{Type: models.HistorySearch})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "golang tutorials", byType[0].Query)

	// Keyword matches query or result text
	byKeyword, err := history.ListForUser(alice.ID, HistoryFilter{Keyword: "interfaces"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, models.HistorySearch, byKeyword[0].Type)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	inRange, err := history.ListForUser(alice.ID, HistoryFilter{DateStart: &past, DateEnd: &future})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	outOfRange, err := history.ListForUser(alice.ID, HistoryFilter{DateStart: &future})
	require.NoError(t, err)
	assert.Empty(t, outOfRange)
}

func TestHistoryStore_UpdateForUser(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)
	bob := createUser(t, users, "bob", models.RoleUser)

	entry, err := history.Create(alice.ID, models.HistorySearch, "original", "result", nil)
	require.NoError(t, err)

	newQuery := "edited"
	updated, err := history.UpdateForUser(entry.ID, alice.ID, HistoryUpdate{Query: &newQuery})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Query)
	assert.Equal(t, "result", updated.Result) // nil field left unchanged

	// Another user cannot touch the row
	_, err = history.UpdateForUser(entry.ID, bob.ID, HistoryUpdate{Query: &newQuery})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = history.UpdateForUser(9999, alice.ID, HistoryUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStore_DeleteForUser(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)
	bob := createUser(t, users, "bob", models.RoleUser)

	entry, err := history.Create(alice.ID, models.HistorySearch, "q", "r", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, history.DeleteForUser(entry.ID, bob.ID), ErrNotFound)
	require.NoError(t, history.DeleteForUser(entry.ID, alice.ID))

	_, err = history.GetForUser(entry.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStore_DeleteAllForUser(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)
	bob := createUser(t, users, "bob", models.RoleUser)

	for i := 0; i < 3; i++ {
		_, err := history.Create(alice.ID, models.HistorySearch, "q", "r", nil)
		require.NoError(t, err)
	}
	_, err := history.Create(bob.ID, models.HistorySearch, "q", "r", nil)
	require.NoError(t, err)

	require.NoError(t, history.DeleteAllForUser(alice.ID))

	gone, err := history.ListForUser(alice.ID, HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := history.ListForUser(bob.ID, HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestHistoryStore_Counts(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)

	for i := 0; i < 2; i++ {
		_, err := history.Create(alice.ID, models.HistorySearch, "q", "r", nil)
		require.NoError(t, err)
	}
	_, err := history.Create(alice.ID, models.HistoryImage, "q", "r", nil)
	require.NoError(t, err)

	searches, err := history.CountByType(models.HistorySearch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, searches)

	images, err := history.CountByType(models.HistoryImage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, images)

	recent, err := history.CountSince(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 3, recent)

	none, err := history.CountSince(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 0, none)
}

func TestHistoryStore_ListRecentForUser(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	history := NewHistoryStore(db)

	alice := createUser(t, users, "alice", models.RoleUser)

	old, err := history.Create(alice.ID, models.HistorySearch, "old", "r", nil)
	require.NoError(t, err)
	db.Model(old).Update("created_at", time.Now().Add(-time.Hour))

	_, err = history.Create(alice.ID, models.HistorySearch, "new", "r", nil)
	require.NoError(t, err)

	recent, err := history.ListRecentForUser(alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Query)
}
