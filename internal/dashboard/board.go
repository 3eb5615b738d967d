// Package dashboard keeps the owner's working copy of the inquiries table
// and applies mark-as-read and bookmark changes to it.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/welldanyogia/elite-estate/internal/changefeed"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/models"
	"github.com/welldanyogia/elite-estate/internal/repository"
)

// Board is the dashboard's local collection of inquiries.
//
// Changes are applied locally first and then written to the store. The local
// change only stands once the store acknowledges it; a failed write is rolled
// back and reported to the caller. Any change event from the feed schedules
// a full refetch, and bursts of events collapse into one pending refetch.
type Board struct {
	repo      repository.InquiryRepository
	publisher changefeed.Publisher
	logger    *slog.Logger

	mu      sync.RWMutex
	items   []models.Inquiry
	loaded  bool
	lastErr error

	// Held by writes and refetches. A refetch never reads the store while a
	// write is in flight, so it cannot replace a committed change with rows
	// read before the commit, and a rollback never undoes another write.
	writeMu sync.Mutex

	refresh chan struct{}
}

// NewBoard creates a Board. publisher receives the UPDATE changes the board
// makes and may be nil.
func NewBoard(repo repository.InquiryRepository, publisher changefeed.Publisher, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		refresh:   make(chan struct{}, 1),
	}
}

// Refresh replaces the local collection with a full read of the store.
// On failure the collection becomes empty and the error is returned.
func (b *Board) Refresh(ctx context.Context) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	items, err := b.repo.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.loaded = true
	if err != nil {
		b.items = nil
		b.lastErr = apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
		b.logger.Error("failed to fetch inquiries", slog.Any("error", err))
		return b.lastErr
	}

	b.items = items
	b.lastErr = nil
	return nil
}

// EnsureLoaded refreshes when nothing has been loaded yet or the last read failed
func (b *Board) EnsureLoaded(ctx context.Context) error {
	b.mu.RLock()
	fresh := b.loaded && b.lastErr == nil
	b.mu.RUnlock()

	if fresh {
		return nil
	}
	return b.Refresh(ctx)
}

// View returns the filtered local collection
func (b *Board) View(status models.StatusFilter, query string) []models.Inquiry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Filter(b.items, status, query)
}

// Stats summarizes the local collection
func (b *Board) Stats() models.InquiryStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats(b.items)
}

// Get returns one inquiry, asking the store when it is not held locally
func (b *Board) Get(ctx context.Context, id string) (*models.Inquiry, error) {
	return b.lookup(ctx, id)
}

// MarkAsRead moves an inquiry to read. An inquiry that is already read is
// returned unchanged without writing to the store.
func (b *Board) MarkAsRead(ctx context.Context, id string) (*models.Inquiry, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	current, err := b.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsRead() {
		return current, nil
	}

	previous := current.Status
	b.apply(id, func(i *models.Inquiry) { i.Status = models.StatusRead })

	if err := b.repo.MarkAsRead(ctx, id); err != nil {
		b.apply(id, func(i *models.Inquiry) { i.Status = previous })
		return nil, b.writeError("mark as read", id, err)
	}

	current.Status = models.StatusRead
	return b.committed(ctx, current), nil
}

// ToggleBookmark flips the bookmark flag of an inquiry
func (b *Board) ToggleBookmark(ctx context.Context, id string) (*models.Inquiry, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	current, err := b.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := current.Bookmarked
	next := !previous
	b.apply(id, func(i *models.Inquiry) { i.Bookmarked = next })

	if err := b.repo.SetBookmarked(ctx, id, next); err != nil {
		b.apply(id, func(i *models.Inquiry) { i.Bookmarked = previous })
		return nil, b.writeError("toggle bookmark", id, err)
	}

	current.Bookmarked = next
	return b.committed(ctx, current), nil
}

// Publish implements changefeed.Publisher. It never blocks: when a refetch
// is already pending the event is absorbed by it.
func (b *Board) Publish(_ context.Context, change changefeed.Change) {
	if change.Table != changefeed.TableInquiries {
		return
	}
	select {
	case b.refresh <- struct{}{}:
	default:
	}
}

// Run loads the collection and refetches after change events until ctx is done
func (b *Board) Run(ctx context.Context) error {
	_ = b.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.refresh:
			if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("refetch after change failed", slog.Any("error", err))
			}
		}
	}
}

// lookup finds an inquiry locally, falling back to one store read
func (b *Board) lookup(ctx context.Context, id string) (*models.Inquiry, error) {
	b.mu.RLock()
	for i := range b.items {
		if b.items[i].ID == id {
			found := b.items[i]
			b.mu.RUnlock()
			return &found, nil
		}
	}
	b.mu.RUnlock()

	inquiry, err := b.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInquiryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	b.insert(*inquiry)
	return inquiry, nil
}

// insert adds an inquiry fetched on demand, keeping newest-first order
func (b *Board) insert(inquiry models.Inquiry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == inquiry.ID {
			b.items[i] = inquiry
			return
		}
	}
	b.items = append(b.items, inquiry)
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].CreatedAt.After(b.items[j].CreatedAt)
	})
}

// apply mutates the local copy of one inquiry
func (b *Board) apply(id string, mutate func(*models.Inquiry)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			mutate(&b.items[i])
			return
		}
	}
}

// committed stores the acknowledged row locally, even if it has left the
// collection meanwhile, and announces it
func (b *Board) committed(ctx context.Context, updated *models.Inquiry) *models.Inquiry {
	b.insert(*updated)

	if b.publisher != nil {
		b.publisher.Publish(ctx, changefeed.NewInquiryChange(changefeed.EventUpdate, updated))
	}
	return updated
}

func (b *Board) writeError(action, id string, err error) error {
	b.logger.Error("inquiry update failed, local change rolled back",
		slog.String("action", action),
		slog.String("inquiry_id", id),
		slog.Any("error", err),
	)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrInquiryNotFound
	}
	return apperrors.Wrap(apperrors.ErrStoreUnavailable, action)
}
