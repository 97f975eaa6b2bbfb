package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gifstore/internal/access"
	"gifstore/internal/model"
	"gifstore/internal/repository"
	repoMocks "gifstore/internal/repository/mocks"
	"gifstore/internal/storage"
	storeMocks "gifstore/internal/storage/mocks"
)

var (
	owner    = &access.Identity{ID: "owner-1", Email: "owner@example.com", Fullname: "Owner"}
	stranger = &access.Identity{ID: "other-1", Email: "other@example.com", Fullname: "Other"}
)

type fixture struct {
	items *repoMocks.MockItemRepository
	tags  *repoMocks.MockTagRepository
	store *storeMocks.MockStorage
	svc   ItemService
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		items: new(repoMocks.MockItemRepository),
		tags:  new(repoMocks.MockTagRepository),
		store: new(storeMocks.MockStorage),
	}
	f.svc = NewItemService(f.items, f.tags, f.store, opts...)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.items.AssertExpectations(t)
	f.tags.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func privateItem() *model.Item {
	return &model.Item{ID: "item-1", DisplayName: "cat", PhysicalName: "phys", OwnerID: owner.ID}
}

func publicItem() *model.Item {
	it := privateItem()
	it.IsPublic = true
	return it
}

func TestItemService_Get(t *testing.T) {
	ctx := context.Background()
	view := &model.ItemView{ID: "item-1", Tags: []string{}}

	tests := []struct {
		name      string
		item      *model.Item
		requester *access.Identity
		wantErr   error
	}{
		{"anonymous reads public", publicItem(), nil, nil},
		{"anonymous denied private", privateItem(), nil, ErrUnauthenticated},
		{"stranger denied private", privateItem(), stranger, ErrForbidden},
		{"stranger reads public", publicItem(), stranger, nil},
		{"owner reads private", privateItem(), owner, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.items.On("FindByID", ctx, "item-1").Return(tt.item, nil)
			if tt.wantErr == nil {
				f.items.On("FindViewByID", ctx, "item-1").Return(view, nil)
			}

			got, err := f.svc.Get(ctx, tt.requester, "item-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, view, got)
			}
			f.assertExpectations(t)
		})
	}

	t.Run("missing item", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.Get(ctx, owner, "nope")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrForbidden)
	})

	t.Run("repository failure is a storage error", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "x").Return(nil, errors.New("db down"))

		_, err := f.svc.Get(ctx, owner, "x")

		assert.ErrorIs(t, err, ErrStorage)
	})
}

func TestItemService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("requires identity", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.List(ctx, nil, 1)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	tests := []struct {
		page int
		pq   repository.PageQuery
	}{
		{1, repository.PageQuery{Limit: 12, Offset: 0}},
		{3, repository.PageQuery{Limit: 12, Offset: 24}},
		{0, repository.PageQuery{}},
		{-2, repository.PageQuery{}},
	}
	for _, tt := range tests {
		f := newFixture()
		f.items.On("ListByOwner", ctx, owner.ID, tt.pq).
			Return(&repository.PageResult[model.ItemView]{Items: []model.ItemView{}, Total: 35}, nil)

		page, err := f.svc.List(ctx, owner, tt.page)

		require.NoError(t, err)
		assert.Equal(t, tt.page, page.CurrentPage)
		assert.Equal(t, 12, page.PageSize)
		assert.Equal(t, 35, page.TotalCount)
		assert.NotNil(t, page.Items)
		f.assertExpectations(t)
	}
}

func TestItemService_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.items.On("Search", ctx, owner.ID, "cat", repository.PageQuery{Limit: 12, Offset: 12}).
		Return(&repository.PageResult[model.ItemView]{Total: 13, Items: []model.ItemView{{ID: "x"}}}, nil)

	page, err := f.svc.Search(ctx, owner, "  cat ", 2)

	require.NoError(t, err)
	assert.Equal(t, 13, page.TotalCount)
	assert.Len(t, page.Items, 1)
	f.assertExpectations(t)

	_, err = f.svc.Search(ctx, nil, "cat", 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestItemService_WriteAccess(t *testing.T) {
	ctx := context.Background()

	// Every write operation must refuse anonymous and non-owner callers, even on public items.
	ops := map[string]func(ItemService, *access.Identity) error{
		"rename": func(s ItemService, r *access.Identity) error {
			_, err := s.Rename(ctx, r, "item-1", "new")
			return err
		},
		"visibility": func(s ItemService, r *access.Identity) error {
			_, err := s.SetVisibility(ctx, r, "item-1", false)
			return err
		},
		"delete": func(s ItemService, r *access.Identity) error {
			return s.Delete(ctx, r, "item-1")
		},
		"tag": func(s ItemService, r *access.Identity) error {
			_, err := s.Tag(ctx, r, "item-1", "funny")
			return err
		},
		"untag": func(s ItemService, r *access.Identity) error {
			_, err := s.Untag(ctx, r, "item-1", "funny")
			return err
		},
	}

	for name, op := range ops {
		t.Run(name+" anonymous", func(t *testing.T) {
			f := newFixture()
			assert.ErrorIs(t, op(f.svc, nil), ErrUnauthenticated)
			f.assertExpectations(t)
		})
		t.Run(name+" stranger on public", func(t *testing.T) {
			f := newFixture()
			f.items.On("FindByID", ctx, "item-1").Return(publicItem(), nil)
			assert.ErrorIs(t, op(f.svc, stranger), ErrForbidden)
			f.assertExpectations(t)
		})
		t.Run(name+" missing item", func(t *testing.T) {
			f := newFixture()
			f.items.On("FindByID", ctx, "item-1").Return(nil, repository.ErrNotFound)
			assert.ErrorIs(t, op(f.svc, owner), ErrNotFound)
		})
	}
}

func TestItemService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.items.On("UpdateDisplayName", ctx, "item-1", "dog").Return(nil)
		f.items.On("FindViewByID", ctx, "item-1").Return(&model.ItemView{ID: "item-1", DisplayName: "dog"}, nil)

		v, err := f.svc.Rename(ctx, owner, "item-1", " dog ")

		require.NoError(t, err)
		assert.Equal(t, "dog", v.DisplayName)
		f.assertExpectations(t)
	})

	t.Run("empty name", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Rename(ctx, owner, "item-1", "   ")
		assert.ErrorIs(t, err, ErrValidation)
		f.assertExpectations(t)
	})
}

func TestItemService_SetVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
	f.items.On("SetVisibility", ctx, "item-1", true).Return(nil)
	f.items.On("FindViewByID", ctx, "item-1").Return(&model.ItemView{ID: "item-1", IsPublic: true}, nil)

	v, err := f.svc.SetVisibility(ctx, owner, "item-1", true)

	require.NoError(t, err)
	assert.True(t, v.IsPublic)
	f.assertExpectations(t)
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blob then record", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		blob := f.store.On("Delete", ctx, "phys").Return(nil)
		f.items.On("Delete", ctx, "item-1").Return(nil).NotBefore(blob)

		assert.NoError(t, f.svc.Delete(ctx, owner, "item-1"))
		f.assertExpectations(t)
	})

	t.Run("blob failure keeps record", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.store.On("Delete", ctx, "phys").Return(errors.New("disk on fire"))

		err := f.svc.Delete(ctx, owner, "item-1")

		assert.ErrorIs(t, err, ErrStorage)
		f.items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("record already gone after blob delete", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.store.On("Delete", ctx, "phys").Return(nil)
		f.items.On("Delete", ctx, "item-1").Return(repository.ErrNotFound)

		assert.NoError(t, f.svc.Delete(ctx, owner, "item-1"))
	})

	t.Run("record delete failure", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.store.On("Delete", ctx, "phys").Return(nil)
		f.items.On("Delete", ctx, "item-1").Return(errors.New("db down"))

		assert.ErrorIs(t, f.svc.Delete(ctx, owner, "item-1"), ErrStorage)
	})
}

func TestItemService_Tag(t *testing.T) {
	ctx := context.Background()
	tag := &model.Tag{ID: "tag-1", Title: "funny"}

	t.Run("existing tag", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(tag, nil)
		f.tags.On("Associate", ctx, "item-1", "tag-1").Return(nil)

		title, err := f.svc.Tag(ctx, owner, "item-1", "funny")

		require.NoError(t, err)
		assert.Equal(t, "funny", title)
		f.assertExpectations(t)
	})

	t.Run("creates tag on first use", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(nil, repository.ErrNotFound)
		f.tags.On("Create", ctx, mock.MatchedBy(func(tg *model.Tag) bool { return tg.Title == "funny" && tg.ID != "" })).
			Return(tag, nil)
		f.tags.On("Associate", ctx, "item-1", "tag-1").Return(nil)

		_, err := f.svc.Tag(ctx, owner, "item-1", "funny")

		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("lost create race re-reads", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(nil, repository.ErrNotFound).Once()
		f.tags.On("Create", ctx, mock.Anything).Return(nil, repository.ErrConflict)
		f.tags.On("FindByTitle", ctx, "funny").Return(tag, nil).Once()
		f.tags.On("Associate", ctx, "item-1", "tag-1").Return(nil)

		title, err := f.svc.Tag(ctx, owner, "item-1", "funny")

		require.NoError(t, err)
		assert.Equal(t, "funny", title)
		f.assertExpectations(t)
	})

	t.Run("already tagged", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(tag, nil)
		f.tags.On("Associate", ctx, "item-1", "tag-1").Return(repository.ErrConflict)

		_, err := f.svc.Tag(ctx, owner, "item-1", "funny")

		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("empty title", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Tag(ctx, owner, "item-1", " ")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestItemService_Untag(t *testing.T) {
	ctx := context.Background()
	tag := &model.Tag{ID: "tag-1", Title: "funny"}

	t.Run("ok", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(tag, nil)
		f.tags.On("Dissociate", ctx, "item-1", "tag-1").Return(nil)

		title, err := f.svc.Untag(ctx, owner, "item-1", "funny")

		require.NoError(t, err)
		assert.Equal(t, "funny", title)
		f.assertExpectations(t)
	})

	t.Run("unknown tag", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.Untag(ctx, owner, "item-1", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not associated", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByID", ctx, "item-1").Return(privateItem(), nil)
		f.tags.On("FindByTitle", ctx, "funny").Return(tag, nil)
		f.tags.On("Dissociate", ctx, "item-1", "tag-1").Return(repository.ErrNotFound)

		_, err := f.svc.Untag(ctx, owner, "item-1", "funny")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemService_OpenFile(t *testing.T) {
	ctx := context.Background()
	phys := storage.NewPhysicalName("cat.gif", owner.ID)

	stored := func(public bool) *model.Item {
		return &model.Item{ID: "item-1", PhysicalName: phys, OwnerID: owner.ID, IsPublic: public}
	}

	t.Run("anonymous reads public file case-insensitively", func(t *testing.T) {
		f := newFixture()
		upper := strings.ToUpper(phys)
		f.items.On("FindByPhysicalName", ctx, upper).Return(stored(true), nil)
		f.store.On("Get", ctx, phys).Return(io.NopCloser(strings.NewReader("GIF89a")), storage.ObjectInfo{Size: 6}, nil)

		rc, info, err := f.svc.OpenFile(ctx, nil, upper+".gif")

		require.NoError(t, err)
		defer rc.Close()
		assert.Equal(t, storage.ContentType, info.ContentType)
		f.assertExpectations(t)
	})

	t.Run("anonymous denied private file", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByPhysicalName", ctx, phys).Return(stored(false), nil)

		_, _, err := f.svc.OpenFile(ctx, nil, phys)

		assert.ErrorIs(t, err, ErrUnauthenticated)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("stranger denied private file", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByPhysicalName", ctx, phys).Return(stored(false), nil)

		_, _, err := f.svc.OpenFile(ctx, stranger, phys)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("malformed name", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.OpenFile(ctx, owner, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("blob missing", func(t *testing.T) {
		f := newFixture()
		f.items.On("FindByPhysicalName", ctx, phys).Return(stored(false), nil)
		f.store.On("Get", ctx, phys).Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		_, _, err := f.svc.OpenFile(ctx, owner, phys)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
