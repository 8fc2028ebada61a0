package lists_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolists/internal/database"
	"todolists/models"
	"todolists/services/lists"
	"todolists/services/users"
	"todolists/services/visibility"
)

// stepClock advances by one millisecond on every reading.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Millisecond)
	return c.cur
}

type fixture struct {
	db  *database.DB
	svc *lists.Service
	u1  models.Viewer
	u2  models.Viewer
}

func newFixture(t *testing.T, policy lists.Policy) *fixture {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "lists.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := lists.NewService(db.Lists, users.NewService(db.Users), policy)
	clock := &stepClock{cur: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc.SetClock(clock.Now)

	f := &fixture{db: db, svc: svc}
	f.u1 = f.addUser(t, "user1")
	f.u2 = f.addUser(t, "user2")
	return f
}

func (f *fixture) addUser(t *testing.T, name string) models.Viewer {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, f.db.Users.Insert(context.Background(), u))
	return models.ViewerFor(*u)
}

func (f *fixture) create(t *testing.T, v models.Viewer, title string, public bool) *models.List {
	t.Helper()
	l, err := f.svc.CreateList(context.Background(), v, models.ListFields{Title: title, Public: public})
	require.NoError(t, err)
	return l
}

func (f *fixture) modifiedAt(t *testing.T, v models.Viewer, id int64) time.Time {
	t.Helper()
	l, err := f.svc.GetList(context.Background(), v, id)
	require.NoError(t, err)
	return l.ModifiedAt
}

func titles(ls []models.List) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}

func TestCreateListStampsOwner(t *testing.T) {
	f := newFixture(t, lists.Policy{})

	l := f.create(t, f.u1, "ToDoList", false)

	require.NotNil(t, l.OwnerID)
	assert.Equal(t, f.u1.UserID, *l.OwnerID)
	assert.False(t, l.Public)
	assert.Equal(t, l.CreatedAt, l.ModifiedAt)
}

func TestCreateListAnonymousRequiresAuth(t *testing.T) {
	f := newFixture(t, lists.Policy{})

	_, err := f.svc.CreateList(context.Background(), models.Anonymous(), models.ListFields{Title: "QWERTY"})
	assert.ErrorIs(t, err, lists.ErrAuthRequired)

	all, err := f.svc.VisibleLists(context.Background(), f.u1, lists.OrderCreated)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateListAnonymousAllowedByPolicy(t *testing.T) {
	f := newFixture(t, lists.Policy{AllowAnonymousOwner: true})
	ctx := context.Background()

	l, err := f.svc.CreateList(ctx, models.Anonymous(), models.ListFields{Title: "shared", Public: true})
	require.NoError(t, err)
	assert.Nil(t, l.OwnerID)

	visible, err := f.svc.VisibleLists(ctx, models.Anonymous(), lists.OrderCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, titles(visible))

	_, err = f.svc.UpdateList(ctx, f.u1, l.ID, models.ListFields{Title: "mine now"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
}

func TestCreateListValidation(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	l, err := f.svc.CreateList(ctx, f.u1, models.ListFields{Title: strings.Repeat("w", models.MaxListTitleLength)})
	require.NoError(t, err)
	assert.Len(t, l.Title, models.MaxListTitleLength)

	_, err = f.svc.CreateList(ctx, f.u1, models.ListFields{Title: strings.Repeat("w", models.MaxListTitleLength+1)})
	var verr *lists.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = f.svc.CreateList(ctx, f.u1, models.ListFields{Title: "   "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["title"])

	l, err = f.svc.UpdateList(ctx, f.u1, l.ID, models.ListFields{Title: ""})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Nil(t, l)
}

func TestVisibleListsAnonymousSeesOnlyPublic(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	f.create(t, f.u1, "public one", true)
	f.create(t, f.u2, "private two", false)

	got, err := f.svc.VisibleLists(ctx, models.Anonymous(), lists.OrderCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"public one"}, titles(got))
}

func TestVisibleListsPublicAndOwn(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	f.create(t, f.u1, "User1 public list", true)
	f.create(t, f.u1, "User1 private list", false)
	f.create(t, f.u2, "User2 public list", true)
	f.create(t, f.u2, "User2 private list", false)

	got, err := f.svc.VisibleLists(ctx, f.u1, lists.OrderCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"User1 public list", "User1 private list", "User2 public list"}, titles(got))

	mine, err := f.svc.OwnedLists(ctx, f.u1, lists.OrderCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"User1 public list", "User1 private list"}, titles(mine))

	_, err = f.svc.OwnedLists(ctx, models.Anonymous(), lists.OrderCreated)
	assert.ErrorIs(t, err, lists.ErrAuthRequired)
}

func TestGetListPrivateIsNotFoundForOthers(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	private := f.create(t, f.u1, "secret", false)

	_, err := f.svc.GetList(ctx, models.Anonymous(), private.ID)
	assert.ErrorIs(t, err, lists.ErrNotFound)
	_, err = f.svc.GetList(ctx, f.u2, private.ID)
	assert.ErrorIs(t, err, lists.ErrNotFound)
	_, err = f.svc.GetList(ctx, f.u2, private.ID+100)
	assert.ErrorIs(t, err, lists.ErrNotFound)

	got, err := f.svc.GetList(ctx, f.u1, private.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)
}

func TestProfileListsShowsOnlyPublic(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	f.create(t, f.u1, "User1 public list", true)
	f.create(t, f.u1, "User1 private list", false)
	f.create(t, f.u2, "User2 public list", true)

	user, got, err := f.svc.ProfileLists(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", user.Username)
	assert.Equal(t, []string{"User1 public list"}, titles(got))

	_, _, err = f.svc.ProfileLists(ctx, "user3")
	assert.ErrorIs(t, err, lists.ErrNotFound)
}

func TestEntryMutationsTouchList(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	l := f.create(t, f.u1, "Groceries", false)
	before := f.modifiedAt(t, f.u1, l.ID)

	entry, err := f.svc.CreateEntry(ctx, f.u1, l.ID, models.EntryFields{Text: "milk"})
	require.NoError(t, err)
	afterCreate := f.modifiedAt(t, f.u1, l.ID)
	assert.True(t, afterCreate.After(before), "create should advance modified_at")

	_, err = f.svc.UpdateEntry(ctx, f.u1, entry.ID, models.EntryFields{Text: "bread", Completed: true})
	require.NoError(t, err)
	afterUpdate := f.modifiedAt(t, f.u1, l.ID)
	assert.True(t, afterUpdate.After(afterCreate), "update should advance modified_at")

	_, err = f.svc.DeleteEntry(ctx, f.u1, entry.ID)
	require.NoError(t, err)
	afterDelete := f.modifiedAt(t, f.u1, l.ID)
	assert.True(t, afterDelete.After(afterUpdate), "delete should advance modified_at")

	got, err := f.svc.GetList(ctx, f.u1, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.True(t, l.CreatedAt.Equal(got.CreatedAt), "entry activity must not change created_at")
}

func TestGroceriesScenario(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	l := f.create(t, f.u1, "Groceries", false)
	entry, err := f.svc.CreateEntry(ctx, f.u1, l.ID, models.EntryFields{Text: "milk"})
	require.NoError(t, err)
	before := f.modifiedAt(t, f.u1, l.ID)

	_, err = f.svc.UpdateEntry(ctx, f.u2, entry.ID, models.EntryFields{Text: "bread"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
	assert.Equal(t, before, f.modifiedAt(t, f.u1, l.ID))

	updated, err := f.svc.UpdateEntry(ctx, f.u1, entry.ID, models.EntryFields{Text: "bread"})
	require.NoError(t, err)
	assert.Equal(t, "bread", updated.Text)
	assert.True(t, f.modifiedAt(t, f.u1, l.ID).After(before))
}

func TestNonOwnerMutationsAreNotFound(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	public := f.create(t, f.u1, "public", true)
	entry, err := f.svc.CreateEntry(ctx, f.u1, public.ID, models.EntryFields{Text: "item"})
	require.NoError(t, err)

	_, err = f.svc.UpdateList(ctx, f.u2, public.ID, models.ListFields{Title: "hijack"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteList(ctx, f.u2, public.ID), lists.ErrNotFound)
	_, err = f.svc.CreateEntry(ctx, f.u2, public.ID, models.EntryFields{Text: "spam"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
	_, err = f.svc.DeleteEntry(ctx, f.u2, entry.ID)
	assert.ErrorIs(t, err, lists.ErrNotFound)

	// same answer for records that do not exist at all
	_, err = f.svc.UpdateList(ctx, f.u2, 9999, models.ListFields{Title: "x"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
	_, err = f.svc.DeleteEntry(ctx, f.u2, 9999)
	assert.ErrorIs(t, err, lists.ErrNotFound)

	_, err = f.svc.UpdateList(ctx, models.Anonymous(), public.ID, models.ListFields{Title: "x"})
	assert.ErrorIs(t, err, lists.ErrAuthRequired)
	_, err = f.svc.DeleteEntry(ctx, models.Anonymous(), entry.ID)
	assert.ErrorIs(t, err, lists.ErrAuthRequired)

	got, err := f.svc.GetList(ctx, f.u1, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "public", got.Title)
	assert.Len(t, got.Entries, 1)
}

func TestUpdateListRefreshesModified(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	l := f.create(t, f.u1, "old", false)
	updated, err := f.svc.UpdateList(ctx, f.u1, l.ID, models.ListFields{Title: "new", Public: true})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Title)
	assert.True(t, updated.Public)
	assert.True(t, updated.ModifiedAt.After(l.ModifiedAt))
}

func TestDeleteListCascadesEntries(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	l := f.create(t, f.u1, "doomed", true)
	var ids []int64
	for _, text := range []string{"one", "two", "three"} {
		e, err := f.svc.CreateEntry(ctx, f.u1, l.ID, models.EntryFields{Text: text})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	require.NoError(t, f.svc.DeleteList(ctx, f.u1, l.ID))

	_, err := f.svc.GetList(ctx, f.u1, l.ID)
	assert.ErrorIs(t, err, lists.ErrNotFound)
	for _, id := range ids {
		_, err := f.svc.GetOwnedEntry(ctx, f.u1, id)
		assert.ErrorIs(t, err, lists.ErrNotFound)
	}

	var orphans int
	require.NoError(t, f.db.Connection().QueryRow(`SELECT COUNT(*) FROM entries WHERE list_id = ?`, l.ID).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestEntryValidation(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()
	l := f.create(t, f.u1, "list", false)
	before := f.modifiedAt(t, f.u1, l.ID)

	for _, text := range []string{"", "a", " a ", strings.Repeat("a", models.MaxEntryTextLength+1)} {
		_, err := f.svc.CreateEntry(ctx, f.u1, l.ID, models.EntryFields{Text: text})
		var verr *lists.ValidationError
		require.ErrorAs(t, err, &verr, "text %q", text)
		assert.Contains(t, verr.Fields, "text")
	}
	assert.Equal(t, before, f.modifiedAt(t, f.u1, l.ID), "rejected entries must not touch the list")

	e, err := f.svc.CreateEntry(ctx, f.u1, l.ID, models.EntryFields{Text: strings.Repeat("a", models.MaxEntryTextLength)})
	require.NoError(t, err)
	assert.Len(t, e.Text, models.MaxEntryTextLength)
}

func TestTouchListMissing(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	assert.ErrorIs(t, f.svc.TouchList(context.Background(), 4242), lists.ErrNotFound)
}

func TestVisibleListsOrderModified(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	ctx := context.Background()

	a := f.create(t, f.u1, "a", true)
	f.create(t, f.u1, "b", true)
	f.create(t, f.u1, "c", false)

	_, err := f.svc.CreateEntry(ctx, f.u1, a.ID, models.EntryFields{Text: "eggs"})
	require.NoError(t, err)

	byCreated, err := f.svc.VisibleLists(ctx, f.u1, lists.ParseOrder(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, titles(byCreated))

	byModified, err := f.svc.OwnedLists(ctx, f.u1, lists.ParseOrder("modified"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, titles(byModified))
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, lists.OrderModified, lists.ParseOrder("modified"))
	assert.Equal(t, lists.OrderCreated, lists.ParseOrder("created"))
	assert.Equal(t, lists.OrderCreated, lists.ParseOrder("bogus"))
}

// vanishingStore deletes the list right after the ownership check passes.
type vanishingStore struct {
	*database.ListRepository
}

func (s vanishingStore) FindList(ctx context.Context, p visibility.Predicate, id int64) (*models.List, error) {
	l, err := s.ListRepository.FindList(ctx, p, id)
	if err == nil {
		err = s.ListRepository.DeleteList(ctx, id)
	}
	return l, err
}

func TestCreateEntryListDeletedConcurrently(t *testing.T) {
	f := newFixture(t, lists.Policy{})
	l := f.create(t, f.u1, "Groceries", false)

	svc := lists.NewService(vanishingStore{f.db.Lists}, users.NewService(f.db.Users), lists.Policy{})
	_, err := svc.CreateEntry(context.Background(), f.u1, l.ID, models.EntryFields{Text: "milk"})
	assert.ErrorIs(t, err, lists.ErrNotFound)
}
