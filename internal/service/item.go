package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gifstore/internal/access"
	"gifstore/internal/logging"
	"gifstore/internal/model"
	"gifstore/internal/repository"
	"gifstore/internal/storage"
)

// PageSize is fixed for listing and search.
const PageSize = 12

// DefaultMaxUploadBytes applies when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// ItemPage is one page of a listing or search.
type ItemPage struct {
	CurrentPage int              `json:"currentPage"`
	PageSize    int              `json:"pageSize"`
	TotalCount  int              `json:"totalCount"`
	Items       []model.ItemView `json:"items"`
}

// ItemService covers every item operation. A nil requester is an anonymous caller.
type ItemService interface {
	// Get returns the item view when the requester may read it.
	Get(ctx context.Context, requester *access.Identity, id string) (*model.ItemView, error)

	// List returns one page of the requester's own items, newest first.
	// Pages are 1-indexed; page <= 0 or past the end yields no items and the real total.
	List(ctx context.Context, requester *access.Identity, page int) (*ItemPage, error)

	// Search is List filtered by a case-insensitive substring of the display
	// name or any tag title. It never returns other users' items.
	Search(ctx context.Context, requester *access.Identity, keyword string, page int) (*ItemPage, error)

	Rename(ctx context.Context, requester *access.Identity, id, displayName string) (*model.ItemView, error)
	SetVisibility(ctx context.Context, requester *access.Identity, id string, public bool) (*model.ItemView, error)

	// Delete removes the blob, then the record. If the blob cannot be removed
	// the record is kept and ErrStorage is returned.
	Delete(ctx context.Context, requester *access.Identity, id string) error

	// Tag attaches title to the item, creating the tag on first use, and returns the title.
	Tag(ctx context.Context, requester *access.Identity, id, title string) (string, error)
	// Untag detaches title from the item and returns the title. The tag itself is kept.
	Untag(ctx context.Context, requester *access.Identity, id, title string) (string, error)

	// Upload runs the upload pipeline and returns the new item's view.
	Upload(ctx context.Context, requester *access.Identity, in UploadInput) (*model.ItemView, error)

	// OpenFile resolves a requested file name to its item, applies the read
	// policy and opens the blob. The caller closes the reader.
	OpenFile(ctx context.Context, requester *access.Identity, filename string) (io.ReadCloser, storage.ObjectInfo, error)
}

// Option configures an item service.
type Option func(*itemService)

// WithMaxUploadBytes caps upload size. Values <= 0 keep the default.
func WithMaxUploadBytes(n int64) Option {
	return func(s *itemService) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithUploadObserver receives the terminal state of every upload.
func WithUploadObserver(o UploadObserver) Option {
	return func(s *itemService) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *itemService) { s.log = l }
}

type itemService struct {
	items     repository.ItemRepository
	tags      repository.TagRepository
	store     storage.Storage
	maxUpload int64
	observer  UploadObserver
	log       *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

// NewItemService constructs a new ItemService.
func NewItemService(items repository.ItemRepository, tags repository.TagRepository, store storage.Storage, opts ...Option) ItemService {
	s := &itemService{
		items:     items,
		tags:      tags,
		store:     store,
		maxUpload: DefaultMaxUploadBytes,
		log:       logging.Discard(),
		tracer:    otel.Tracer("gifstore/internal/service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *itemService) Get(ctx context.Context, requester *access.Identity, id string) (*model.ItemView, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "item")
	}
	if err := denied(access.Read(requester, item)); err != nil {
		return nil, err
	}
	view, err := s.items.FindViewByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "item")
	}
	return view, nil
}

// pageQuery converts a 1-indexed page into limit/offset. Pages that cannot
// contain items become a count-only query.
func pageQuery(page int) repository.PageQuery {
	if page <= 0 || page > math.MaxInt/PageSize {
		return repository.PageQuery{}
	}
	return repository.PageQuery{Limit: PageSize, Offset: (page - 1) * PageSize}
}

func newItemPage(page int, res *repository.PageResult[model.ItemView]) *ItemPage {
	items := res.Items
	if items == nil {
		items = []model.ItemView{}
	}
	return &ItemPage{CurrentPage: page, PageSize: PageSize, TotalCount: res.Total, Items: items}
}

func (s *itemService) List(ctx context.Context, requester *access.Identity, page int) (*ItemPage, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	res, err := s.items.ListByOwner(ctx, requester.ID, pageQuery(page))
	if err != nil {
		return nil, fromRepo(err, "list items")
	}
	return newItemPage(page, res), nil
}

func (s *itemService) Search(ctx context.Context, requester *access.Identity, keyword string, page int) (*ItemPage, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	res, err := s.items.Search(ctx, requester.ID, strings.TrimSpace(keyword), pageQuery(page))
	if err != nil {
		return nil, fromRepo(err, "search items")
	}
	return newItemPage(page, res), nil
}

// authorizeWrite loads the item and applies the write policy.
func (s *itemService) authorizeWrite(ctx context.Context, requester *access.Identity, id string) (*model.Item, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "item")
	}
	if err := denied(access.Write(requester, item)); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Rename(ctx context.Context, requester *access.Identity, id, displayName string) (*model.ItemView, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, validationf("display name is required")
	}
	if _, err := s.authorizeWrite(ctx, requester, id); err != nil {
		return nil, err
	}
	if err := s.items.UpdateDisplayName(ctx, id, displayName); err != nil {
		return nil, fromRepo(err, "item")
	}
	return s.view(ctx, id)
}

func (s *itemService) SetVisibility(ctx context.Context, requester *access.Identity, id string, public bool) (*model.ItemView, error) {
	if _, err := s.authorizeWrite(ctx, requester, id); err != nil {
		return nil, err
	}
	if err := s.items.SetVisibility(ctx, id, public); err != nil {
		return nil, fromRepo(err, "item")
	}
	return s.view(ctx, id)
}

func (s *itemService) view(ctx context.Context, id string) (*model.ItemView, error) {
	v, err := s.items.FindViewByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "item")
	}
	return v, nil
}

func (s *itemService) Delete(ctx context.Context, requester *access.Identity, id string) error {
	item, err := s.authorizeWrite(ctx, requester, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, item.PhysicalName); err != nil {
		s.log.ErrorContext(ctx, "blob delete failed",
			"item_id", item.ID,
			"physical_name", item.PhysicalName,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: delete blob: %w", ErrStorage, err)
	}

	// A concurrent delete may have removed the row after our lookup.
	if err := s.items.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fromRepo(err, "item")
	}
	return nil
}

func (s *itemService) Tag(ctx context.Context, requester *access.Identity, id, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationf("tag title is required")
	}
	item, err := s.authorizeWrite(ctx, requester, id)
	if err != nil {
		return "", err
	}

	tag, err := s.findOrCreateTag(ctx, title)
	if err != nil {
		return "", err
	}

	if err := s.tags.Associate(ctx, item.ID, tag.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", fmt.Errorf("%w: item is already tagged", ErrConflict)
		}
		return "", fromRepo(err, "tag item")
	}
	return tag.Title, nil
}

// findOrCreateTag checks then creates. A concurrent creator winning the race
// shows up as a conflict, after which the winner's row is read back.
func (s *itemService) findOrCreateTag(ctx context.Context, title string) (*model.Tag, error) {
	tag, err := s.tags.FindByTitle(ctx, title)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fromRepo(err, "tag")
	}

	tag, err = s.tags.Create(ctx, &model.Tag{ID: s.newID(), Title: title})
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, fromRepo(err, "create tag")
	}

	tag, err = s.tags.FindByTitle(ctx, title)
	if err != nil {
		return nil, fromRepo(err, "tag")
	}
	return tag, nil
}

func (s *itemService) Untag(ctx context.Context, requester *access.Identity, id, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationf("tag title is required")
	}
	item, err := s.authorizeWrite(ctx, requester, id)
	if err != nil {
		return "", err
	}

	tag, err := s.tags.FindByTitle(ctx, title)
	if err != nil {
		return "", fromRepo(err, "item is not tagged")
	}
	if err := s.tags.Dissociate(ctx, item.ID, tag.ID); err != nil {
		return "", fromRepo(err, "item is not tagged")
	}
	return tag.Title, nil
}

func (s *itemService) OpenFile(ctx context.Context, requester *access.Identity, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	name := storage.TrimExtension(filename)
	if !storage.ValidPhysicalName(name) {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: file", ErrNotFound)
	}

	item, err := s.items.FindByPhysicalName(ctx, name)
	if err != nil {
		return nil, storage.ObjectInfo{}, fromRepo(err, "file")
	}
	if err := denied(access.Read(requester, item)); err != nil {
		return nil, storage.ObjectInfo{}, err
	}

	rc, info, err := s.store.Get(ctx, item.PhysicalName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WarnContext(ctx, "blob missing for item", "item_id", item.ID, "physical_name", item.PhysicalName)
			return nil, storage.ObjectInfo{}, fmt.Errorf("%w: file", ErrNotFound)
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: open blob: %w", ErrStorage, err)
	}
	if info.ContentType == "" {
		info.ContentType = storage.ContentType
	}
	return rc, info, nil
}
