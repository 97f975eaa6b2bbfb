package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

func seedUser(t *testing.T, db *DB, id string) {
	t.Helper()
	_, err := db.Users().Create(context.Background(), &model.User{
		ID: id, Email: id + "@example.com", Fullname: "User " + id, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func seedItem(t *testing.T, db *DB, id, owner, name string, created time.Time) {
	t.Helper()
	_, err := db.Items().Create(context.Background(), &model.Item{
		ID: id, DisplayName: name, PhysicalName: "phys-" + id, OwnerID: owner, CreatedAt: created,
	})
	require.NoError(t, err)
}

func TestItemStore_Pagination(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "owner")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// item-01 is newest so page order matches item numbering.
	for i := 1; i <= 35; i++ {
		seedItem(t, db, fmt.Sprintf("item-%02d", i), "owner", "gif", base.Add(-time.Duration(i)*time.Minute))
	}

	page := func(n int) *repository.PageResult[model.ItemView] {
		res, err := db.Items().ListByOwner(ctx, "owner", repository.PageQuery{Limit: 12, Offset: (n - 1) * 12})
		require.NoError(t, err)
		return res
	}

	p1 := page(1)
	assert.Equal(t, 35, p1.Total)
	require.Len(t, p1.Items, 12)
	assert.Equal(t, "item-01", p1.Items[0].ID)
	assert.Equal(t, "item-12", p1.Items[11].ID)

	p3 := page(3)
	require.Len(t, p3.Items, 11)
	assert.Equal(t, "item-25", p3.Items[0].ID)
	assert.Equal(t, "item-35", p3.Items[10].ID)

	p4 := page(4)
	assert.Equal(t, 35, p4.Total)
	assert.Empty(t, p4.Items)

	countOnly, err := db.Items().ListByOwner(ctx, "owner", repository.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 35, countOnly.Total)
	assert.Empty(t, countOnly.Items)
}

func TestItemStore_CreateIsAlwaysPrivate(t *testing.T) {
	db := New()
	seedUser(t, db, "owner")

	it, err := db.Items().Create(context.Background(), &model.Item{
		ID: "i", DisplayName: "x", PhysicalName: "p", OwnerID: "owner", IsPublic: true,
	})
	require.NoError(t, err)
	assert.False(t, it.IsPublic)
}

func TestItemStore_PhysicalNameUniqueAndCaseInsensitive(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "owner")
	seedItem(t, db, "a", "owner", "x", time.Now())

	_, err := db.Items().Create(ctx, &model.Item{ID: "b", PhysicalName: "PHYS-A", OwnerID: "owner"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	it, err := db.Items().FindByPhysicalName(ctx, "PHYS-A")
	require.NoError(t, err)
	assert.Equal(t, "a", it.ID)
}

func TestItemStore_SearchIsOwnerScoped(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	now := time.Now()

	seedItem(t, db, "a1", "alice", "Funny Cat", now)
	seedItem(t, db, "a2", "alice", "dog", now.Add(-time.Second))
	seedItem(t, db, "b1", "bob", "funny cat too", now)
	require.NoError(t, db.Items().SetVisibility(ctx, "b1", true))

	_, err := db.Tags().Create(ctx, &model.Tag{ID: "t1", Title: "FUNNY"})
	require.NoError(t, err)
	require.NoError(t, db.Tags().Associate(ctx, "a2", "t1"))

	res, err := db.Items().Search(ctx, "alice", "funny", repository.PageQuery{Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	ids := []string{res.Items[0].ID, res.Items[1].ID}
	assert.Equal(t, []string{"a1", "a2"}, ids)
	assert.Equal(t, []string{"FUNNY"}, res.Items[1].Tags)

	res, err = db.Items().Search(ctx, "alice", "bird", repository.PageQuery{Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestItemStore_ViewAndDelete(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "owner")
	seedItem(t, db, "i", "owner", "cat", time.Now())

	_, err := db.Tags().Create(ctx, &model.Tag{ID: "t2", Title: "b"})
	require.NoError(t, err)
	_, err = db.Tags().Create(ctx, &model.Tag{ID: "t1", Title: "a"})
	require.NoError(t, err)
	require.NoError(t, db.Tags().Associate(ctx, "i", "t2"))
	require.NoError(t, db.Tags().Associate(ctx, "i", "t1"))

	v, err := db.Items().FindViewByID(ctx, "i")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Tags)
	assert.Equal(t, "User owner", v.User.Fullname)

	require.NoError(t, db.Items().Delete(ctx, "i"))
	assert.ErrorIs(t, db.Items().Delete(ctx, "i"), repository.ErrNotFound)

	// tags outlive the item, associations do not
	_, err = db.Tags().FindByID(ctx, "t1")
	assert.NoError(t, err)
	assert.Empty(t, db.itemTags)
}

func TestItemStore_UpdatesMissing(t *testing.T) {
	db := New()
	ctx := context.Background()
	assert.ErrorIs(t, db.Items().UpdateDisplayName(ctx, "nope", "x"), repository.ErrNotFound)
	assert.ErrorIs(t, db.Items().SetVisibility(ctx, "nope", true), repository.ErrNotFound)
	_, err := db.Items().FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// volatile returns a string backed by buf, the way fasthttp hands out route
// params. Overwriting buf changes the string.
func volatile(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func TestStores_UpdatesDoNotKeepCallerKeys(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "owner-1")
	seedItem(t, db, "item-1", "owner-1", "cat", time.Now())
	_, err := db.Tags().Create(ctx, &model.Tag{ID: "tag-1", Title: "funny"})
	require.NoError(t, err)

	buf := []byte("item-1")
	require.NoError(t, db.Items().SetVisibility(ctx, volatile(buf), true))
	require.NoError(t, db.Items().UpdateDisplayName(ctx, volatile(buf), "dog"))
	require.NoError(t, db.Tags().Associate(ctx, volatile(buf), "tag-1"))
	copy(buf, "zzzz-9")

	it, err := db.Items().FindByID(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, it.IsPublic)
	assert.Equal(t, "dog", it.DisplayName)
	view, err := db.Items().FindViewByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"funny"}, view.Tags)

	ubuf := []byte("owner-1")
	require.NoError(t, db.Users().UpdateFullname(ctx, volatile(ubuf), "Renamed"))
	copy(ubuf, "zzzzz-9")
	u, err := db.Users().FindByID(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Fullname)
}

func TestTagStore_Uniqueness(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "owner")
	seedItem(t, db, "i", "owner", "cat", time.Now())

	_, err := db.Tags().Create(ctx, &model.Tag{ID: "t1", Title: "funny"})
	require.NoError(t, err)

	_, err = db.Tags().Create(ctx, &model.Tag{ID: "t2", Title: "funny"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// titles are case-sensitive
	_, err = db.Tags().Create(ctx, &model.Tag{ID: "t3", Title: "Funny"})
	assert.NoError(t, err)

	tag, err := db.Tags().FindByTitle(ctx, "funny")
	require.NoError(t, err)
	assert.Equal(t, "t1", tag.ID)

	require.NoError(t, db.Tags().Associate(ctx, "i", "t1"))
	assert.ErrorIs(t, db.Tags().Associate(ctx, "i", "t1"), repository.ErrConflict)
	assert.Len(t, db.itemTags, 1)

	assert.ErrorIs(t, db.Tags().Associate(ctx, "missing", "t1"), repository.ErrNotFound)

	require.NoError(t, db.Tags().Dissociate(ctx, "i", "t1"))
	assert.ErrorIs(t, db.Tags().Dissociate(ctx, "i", "t1"), repository.ErrNotFound)
}

func TestUserStore(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "u1")

	_, err := db.Users().Create(ctx, &model.User{ID: "u2", Email: "U1@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	u, err := db.Users().FindByEmail(ctx, "U1@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, db.Users().UpdateFullname(ctx, "u1", "Renamed"))
	require.NoError(t, db.Users().UpdatePassword(ctx, "u1", []byte("h2")))
	u, err = db.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Fullname)
	assert.Equal(t, []byte("h2"), u.PasswordHash)

	assert.ErrorIs(t, db.Users().UpdateFullname(ctx, "none", "x"), repository.ErrNotFound)
}
