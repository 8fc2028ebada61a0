// Package lists implements list and entry operations with ownership checks
// and the parent-touch cascade for entry activity.
package lists

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"todolists/internal/database"
	"todolists/models"
	"todolists/services/users"
	"todolists/services/visibility"
)

// Op selects the mutation applied by MutateList and MutateEntry.
type Op int

const (
	OpUpdate Op = iota + 1
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Order selects how list collections are sorted.
type Order = database.ListOrder

const (
	OrderCreated  = database.OrderCreated
	OrderModified = database.OrderModified
)

// ParseOrder maps a query-string value onto an Order. Anything unknown
// falls back to creation order.
func ParseOrder(s string) Order {
	if Order(s) == OrderModified {
		return OrderModified
	}
	return OrderCreated
}

type listStore interface {
	InsertList(ctx context.Context, l *models.List) error
	FindLists(ctx context.Context, q database.ListQuery) ([]models.List, error)
	FindList(ctx context.Context, p visibility.Predicate, id int64) (*models.List, error)
	UpdateList(ctx context.Context, id int64, fields models.ListFields, now time.Time) error
	TouchList(ctx context.Context, id int64, now time.Time) error
	DeleteList(ctx context.Context, id int64) error
	InsertEntry(ctx context.Context, e *models.Entry) error
	FindEntry(ctx context.Context, p visibility.Predicate, id int64) (*models.Entry, error)
	ListEntries(ctx context.Context, listID int64) ([]models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, fields models.EntryFields) error
	DeleteEntry(ctx context.Context, id int64) error
}

var _ listStore = (*database.ListRepository)(nil)

type userLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

var _ userLookup = (*users.Service)(nil)

// Policy holds deployment-level rules for list ownership.
type Policy struct {
	// AllowAnonymousOwner lets anonymous viewers create lists with no owner.
	AllowAnonymousOwner bool
}

// Service coordinates visibility filtering, ownership checks and touch cascades.
type Service struct {
	store  listStore
	users  userLookup
	policy Policy
	now    func() time.Time
}

// NewService returns a list service using the wall clock.
func NewService(store listStore, users userLookup, policy Policy) *Service {
	return &Service{
		store:  store,
		users:  users,
		policy: policy,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for created/modified timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Policy returns the ownership policy in effect.
func (s *Service) Policy() Policy {
	return s.policy
}

// VisibleLists returns public lists plus the viewer's own.
func (s *Service) VisibleLists(ctx context.Context, viewer models.Viewer, order Order) ([]models.List, error) {
	return s.store.FindLists(ctx, database.ListQuery{Predicate: visibility.Visible(viewer), OrderBy: order})
}

// OwnedLists returns only the viewer's own lists.
func (s *Service) OwnedLists(ctx context.Context, viewer models.Viewer, order Order) ([]models.List, error) {
	pred, err := visibility.OwnedOnly(viewer)
	if err != nil {
		return nil, err
	}
	return s.store.FindLists(ctx, database.ListQuery{Predicate: pred, OrderBy: order})
}

// ProfileLists returns a user together with that user's public lists.
func (s *Service) ProfileLists(ctx context.Context, username string) (*models.User, []models.List, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, translate(err)
	}
	lists, err := s.store.FindLists(ctx, database.ListQuery{
		Predicate: visibility.Any(visibility.Public()),
		OwnerID:   user.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	return user, lists, nil
}

// GetList returns a visible list with its entries.
func (s *Service) GetList(ctx context.Context, viewer models.Viewer, id int64) (*models.List, error) {
	return s.findWithEntries(ctx, visibility.Visible(viewer), id)
}

// GetOwnedList returns a list with its entries only when the viewer owns it.
func (s *Service) GetOwnedList(ctx context.Context, viewer models.Viewer, id int64) (*models.List, error) {
	pred, err := visibility.OwnedOnly(viewer)
	if err != nil {
		return nil, err
	}
	return s.findWithEntries(ctx, pred, id)
}

func (s *Service) findWithEntries(ctx context.Context, pred visibility.Predicate, id int64) (*models.List, error) {
	list, err := s.store.FindList(ctx, pred, id)
	if err != nil {
		return nil, translate(err)
	}
	entries, err := s.store.ListEntries(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Entries = entries
	return list, nil
}

// CreateList stores a new list owned by the viewer.
func (s *Service) CreateList(ctx context.Context, viewer models.Viewer, fields models.ListFields) (*models.List, error) {
	if viewer.IsAnonymous() && !s.policy.AllowAnonymousOwner {
		return nil, ErrAuthRequired
	}

	fields, err := ValidateListFields(fields)
	if err != nil {
		return nil, err
	}

	now := s.now()
	list := &models.List{
		Title:      fields.Title,
		Public:     fields.Public,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if !viewer.IsAnonymous() {
		owner := viewer.UserID
		list.OwnerID = &owner
		list.OwnerName = viewer.Username
	}

	if err := s.store.InsertList(ctx, list); err != nil {
		return nil, err
	}
	log.Printf("[lists] created list id=%d owner=%q public=%t", list.ID, viewer.Username, list.Public)
	return list, nil
}

// MutateList applies op to a list the viewer owns. For OpDelete the returned
// list is the state before deletion.
func (s *Service) MutateList(ctx context.Context, viewer models.Viewer, id int64, op Op, fields models.ListFields) (*models.List, error) {
	pred, err := visibility.OwnedOnly(viewer)
	if err != nil {
		return nil, err
	}
	list, err := s.store.FindList(ctx, pred, id)
	if err != nil {
		return nil, translate(err)
	}

	switch op {
	case OpUpdate:
		fields, err := ValidateListFields(fields)
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdateList(ctx, id, fields, s.now()); err != nil {
			return nil, translate(err)
		}
		log.Printf("[lists] updated list id=%d owner=%q", id, viewer.Username)
		return s.findWithEntries(ctx, pred, id)
	case OpDelete:
		if err := s.store.DeleteList(ctx, id); err != nil {
			return nil, translate(err)
		}
		log.Printf("[lists] deleted list id=%d owner=%q", id, viewer.Username)
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported list operation %v", op)
	}
}

// UpdateList changes title and visibility of a list the viewer owns.
func (s *Service) UpdateList(ctx context.Context, viewer models.Viewer, id int64, fields models.ListFields) (*models.List, error) {
	return s.MutateList(ctx, viewer, id, OpUpdate, fields)
}

// DeleteList removes a list the viewer owns along with its entries.
func (s *Service) DeleteList(ctx context.Context, viewer models.Viewer, id int64) error {
	_, err := s.MutateList(ctx, viewer, id, OpDelete, models.ListFields{})
	return err
}

// TouchList records entry activity on a list by refreshing its modified time.
func (s *Service) TouchList(ctx context.Context, listID int64) error {
	if err := s.store.TouchList(ctx, listID, s.now()); err != nil {
		return translate(err)
	}
	return nil
}

// CreateEntry adds an entry to a list the viewer owns and touches the list.
func (s *Service) CreateEntry(ctx context.Context, viewer models.Viewer, listID int64, fields models.EntryFields) (*models.Entry, error) {
	pred, err := visibility.OwnedOnly(viewer)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindList(ctx, pred, listID); err != nil {
		return nil, translate(err)
	}

	fields, err = ValidateEntryFields(fields)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{ListID: listID, Text: fields.Text, Completed: fields.Completed}
	if err := s.store.InsertEntry(ctx, entry); err != nil {
		return nil, translate(err)
	}
	if err := s.touchAfterEntry(ctx, listID, entry.ID, "create"); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetOwnedEntry returns an entry whose parent list the viewer owns.
func (s *Service) GetOwnedEntry(ctx context.Context, viewer models.Viewer, id int64) (*models.Entry, error) {
	pred, err := visibility.OwnedOnly(viewer)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.FindEntry(ctx, pred, id)
	if err != nil {
		return nil, translate(err)
	}
	return entry, nil
}

// MutateEntry applies op to an entry whose parent list the viewer owns and
// then touches that list. For OpDelete the returned entry is the state before
// deletion.
func (s *Service) MutateEntry(ctx context.Context, viewer models.Viewer, id int64, op Op, fields models.EntryFields) (*models.Entry, error) {
	entry, err := s.GetOwnedEntry(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpUpdate:
		fields, err := ValidateEntryFields(fields)
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdateEntry(ctx, id, fields); err != nil {
			return nil, translate(err)
		}
		entry.Text = fields.Text
		entry.Completed = fields.Completed
	case OpDelete:
		if err := s.store.DeleteEntry(ctx, id); err != nil {
			return nil, translate(err)
		}
	default:
		return nil, fmt.Errorf("unsupported entry operation %v", op)
	}

	if err := s.touchAfterEntry(ctx, entry.ListID, entry.ID, op.String()); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry changes text and completion of an entry the viewer owns.
func (s *Service) UpdateEntry(ctx context.Context, viewer models.Viewer, id int64, fields models.EntryFields) (*models.Entry, error) {
	return s.MutateEntry(ctx, viewer, id, OpUpdate, fields)
}

// DeleteEntry removes an entry the viewer owns.
func (s *Service) DeleteEntry(ctx context.Context, viewer models.Viewer, id int64) (*models.Entry, error) {
	return s.MutateEntry(ctx, viewer, id, OpDelete, models.EntryFields{})
}

// touchAfterEntry runs once the entry write has completed. A failure leaves the
// entry in place and the list timestamp stale.
func (s *Service) touchAfterEntry(ctx context.Context, listID, entryID int64, action string) error {
	if err := s.TouchList(ctx, listID); err != nil {
		log.Printf("[lists] warning: %s entry id=%d done but touch of list id=%d failed: %v", action, entryID, listID, err)
		return fmt.Errorf("touch list %d: %w", listID, err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, users.ErrUserNotFound) {
		return ErrNotFound
	}
	return err
}
