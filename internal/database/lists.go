package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"todolists/models"
	"todolists/services/visibility"
)

// ListOrder selects the ordering of collection queries.
type ListOrder string

const (
	// OrderCreated sorts by creation, oldest first.
	OrderCreated ListOrder = "created"
	// OrderModified sorts by last modification, most recent first.
	OrderModified ListOrder = "modified"
)

// ListQuery describes a collection fetch. Predicate is required; OwnerID,
// when non-zero, further restricts to one owner.
type ListQuery struct {
	Predicate visibility.Predicate
	OwnerID   int64
	OrderBy   ListOrder
}

// ListRepository persists lists and their entries.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a list repository on top of an open connection.
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `l.id, l.title, l.owner_id, COALESCE(u.username, ''), l.public, l.created_at, l.modified_at
	FROM lists l LEFT JOIN users u ON u.id = l.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (models.List, error) {
	var (
		l          models.List
		ownerID    sql.NullInt64
		public     int
		createdAt  int64
		modifiedAt int64
	)
	if err := row.Scan(&l.ID, &l.Title, &ownerID, &l.OwnerName, &public, &createdAt, &modifiedAt); err != nil {
		return models.List{}, err
	}
	if ownerID.Valid {
		id := ownerID.Int64
		l.OwnerID = &id
	}
	l.Public = public != 0
	l.CreatedAt = fromUnix(createdAt)
	l.ModifiedAt = fromUnix(modifiedAt)
	return l, nil
}

// InsertList stores a new list and fills in its ID.
func (r *ListRepository) InsertList(ctx context.Context, l *models.List) error {
	var owner any
	if l.OwnerID != nil {
		owner = *l.OwnerID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO lists (title, owner_id, public, created_at, modified_at) VALUES (?, ?, ?, ?, ?)`,
		l.Title, owner, boolToInt(l.Public), toUnix(l.CreatedAt), toUnix(l.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert list id: %w", err)
	}
	l.ID = id
	return nil
}

// FindLists returns every list matching the query.
func (r *ListRepository) FindLists(ctx context.Context, q ListQuery) ([]models.List, error) {
	where, args := compilePredicate(q.Predicate, "l")
	conds := []string{where}
	if q.OwnerID > 0 {
		conds = append(conds, "l.owner_id = ?")
		args = append(args, q.OwnerID)
	}

	order := "l.id ASC"
	if q.OrderBy == OrderModified {
		order = "l.modified_at DESC, l.id DESC"
	}

	query := "SELECT " + listColumns + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY " + order
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// FindList returns the list with the given id if it satisfies the predicate.
// Absent and filtered-out lists both yield ErrNotFound.
func (r *ListRepository) FindList(ctx context.Context, p visibility.Predicate, id int64) (*models.List, error) {
	where, args := compilePredicate(p, "l")
	args = append([]any{id}, args...)

	row := r.db.QueryRowContext(ctx, "SELECT "+listColumns+" WHERE l.id = ? AND "+where, args...)
	l, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query list %d: %w", id, err)
	}
	return &l, nil
}

// UpdateList writes the editable fields of a list and refreshes modified_at.
func (r *ListRepository) UpdateList(ctx context.Context, id int64, fields models.ListFields, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lists SET title = ?, public = ?, modified_at = MAX(modified_at, ?) WHERE id = ?`,
		fields.Title, boolToInt(fields.Public), toUnix(now), id)
	if err != nil {
		return fmt.Errorf("update list %d: %w", id, err)
	}
	return expectAffected(res)
}

// TouchList moves a list's modified_at forward to now. It never moves it back.
func (r *ListRepository) TouchList(ctx context.Context, id int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lists SET modified_at = MAX(modified_at, ?) WHERE id = ?`, toUnix(now), id)
	if err != nil {
		return fmt.Errorf("touch list %d: %w", id, err)
	}
	return expectAffected(res)
}

// DeleteList removes a list together with all of its entries.
func (r *ListRepository) DeleteList(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete list: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("delete entries of list %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete list %d: %w", id, err)
	}
	return nil
}

// InsertEntry stores a new entry and fills in its ID. A parent list that no
// longer exists is reported as ErrNotFound.
func (r *ListRepository) InsertEntry(ctx context.Context, e *models.Entry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (list_id, text, completed) VALUES (?, ?, ?)`,
		e.ListID, e.Text, boolToInt(e.Completed))
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("insert entry: list %d: %w", e.ListID, ErrNotFound)
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert entry id: %w", err)
	}
	e.ID = id
	return nil
}

// FindEntry returns the entry with the given id when its parent list
// satisfies the predicate.
func (r *ListRepository) FindEntry(ctx context.Context, p visibility.Predicate, id int64) (*models.Entry, error) {
	where, args := compilePredicate(p, "l")
	args = append([]any{id}, args...)

	var (
		e         models.Entry
		completed int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.list_id, e.text, e.completed
		FROM entries e JOIN lists l ON l.id = e.list_id
		WHERE e.id = ? AND `+where, args...).Scan(&e.ID, &e.ListID, &e.Text, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query entry %d: %w", id, err)
	}
	e.Completed = completed != 0
	return &e, nil
}

// ListEntries returns the entries of a list in creation order.
func (r *ListRepository) ListEntries(ctx context.Context, listID int64) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, list_id, text, completed FROM entries WHERE list_id = ? ORDER BY id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("query entries of list %d: %w", listID, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var (
			e         models.Entry
			completed int
		)
		if err := rows.Scan(&e.ID, &e.ListID, &e.Text, &completed); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Completed = completed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateEntry writes the editable fields of an entry.
func (r *ListRepository) UpdateEntry(ctx context.Context, id int64, fields models.EntryFields) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET text = ?, completed = ? WHERE id = ?`,
		fields.Text, boolToInt(fields.Completed), id)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	return expectAffected(res)
}

// DeleteEntry removes a single entry.
func (r *ListRepository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
