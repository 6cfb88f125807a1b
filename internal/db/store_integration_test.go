package db

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkiosk/kioskd/internal/model"
)

// newTestStore connects to TEST_DATABASE_URL, applies migrations and wipes
// the tables. Tests are skipped when no test database is configured.
func newTestStore(t *testing.T) Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := Init(url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, RunMigrations(conn, "../../migrations"))

	_, err = conn.Exec(`TRUNCATE users, roles, display_groups, content_items,
		browsers, automation_scripts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewStore(conn)
}

func TestBrowserUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	browser, created, err := store.GetOrCreateBrowser(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, browser.Identifier)
	assert.Nil(t, browser.GroupID)

	again, created, err := store.GetOrCreateBrowser(ctx, id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, browser.Identifier, again.Identifier)

	all, err := store.ListBrowsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// Racing first polls from the same kiosk must never produce two rows; the
// conditional insert decides a single winner and everyone else reads its row.
func TestBrowserUpsertConcurrentFirstPolls(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	const pollers = 16
	var wg sync.WaitGroup
	var createdCount, failures int32

	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			browser, created, err := store.GetOrCreateBrowser(ctx, id)
			if err != nil || browser.Identifier != id {
				atomic.AddInt32(&failures, 1)
				return
			}
			if created {
				atomic.AddInt32(&createdCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&failures))
	assert.Equal(t, int32(1), atomic.LoadInt32(&createdCount),
		"exactly one poll wins the insert")

	all, err := store.ListBrowsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBrowserAssignmentAndDeletion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, _, err := store.GetOrCreateBrowser(ctx, id)
	require.NoError(t, err)

	group, err := store.CreateDisplayGroup(ctx, "Lobby", true)
	require.NoError(t, err)

	require.NoError(t, store.AssignBrowserToGroup(ctx, id, &group.ID))
	browser, err := store.GetBrowser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, browser.GroupID)
	assert.Equal(t, group.ID, *browser.GroupID)

	// deleting the group orphans the browser instead of deleting it
	require.NoError(t, store.DeleteDisplayGroup(ctx, group.ID))
	browser, err = store.GetBrowser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, browser.GroupID)

	require.NoError(t, store.DeleteBrowser(ctx, id))
	_, err = store.GetBrowser(ctx, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPlaylistOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, err := store.CreateDisplayGroup(ctx, "Lobby", true)
	require.NoError(t, err)

	url := "https://example.com"
	duration := 10
	var items []*model.ContentItem
	for _, title := range []string{"a", "b", "c", "d"} {
		item, err := store.CreateContentItem(ctx, title, model.ContentTypeWebsite, nil, &url, &duration)
		require.NoError(t, err)
		items = append(items, item)
	}

	// insert out of order, with a position tie between c and d
	_, err = store.AddPlaylistEntry(ctx, group.ID, items[2].ID, 5)
	require.NoError(t, err)
	_, err = store.AddPlaylistEntry(ctx, group.ID, items[0].ID, 1)
	require.NoError(t, err)
	_, err = store.AddPlaylistEntry(ctx, group.ID, items[3].ID, 5)
	require.NoError(t, err)
	_, err = store.AddPlaylistEntry(ctx, group.ID, items[1].ID, 3)
	require.NoError(t, err)

	entries, err := store.ListPlaylistEntriesForGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var titles []string
	for _, e := range entries {
		require.NotNil(t, e.Item)
		titles = append(titles, e.Item.Title)
	}
	// position order, ties broken by insertion order
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles)
}

func TestPlaylistEntriesCascadeWithContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, err := store.CreateDisplayGroup(ctx, "Lobby", true)
	require.NoError(t, err)
	url := "https://example.com"
	duration := 10
	item, err := store.CreateContentItem(ctx, "a", model.ContentTypeWebsite, nil, &url, &duration)
	require.NoError(t, err)
	_, err = store.AddPlaylistEntry(ctx, group.ID, item.ID, 1)
	require.NoError(t, err)

	require.NoError(t, store.DeleteContentItem(ctx, item.ID))

	entries, err := store.ListPlaylistEntriesForGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnabledScriptsForContentItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url := "https://example.com"
	duration := 10
	item, err := store.CreateContentItem(ctx, "a", model.ContentTypeWebsite, nil, &url, &duration)
	require.NoError(t, err)

	pattern := "*example*"
	second, err := store.CreateAutomationScript(ctx, "beta", &pattern, "noop()", true, 2)
	require.NoError(t, err)
	first, err := store.CreateAutomationScript(ctx, "alpha", nil, "noop()", true, 1)
	require.NoError(t, err)
	disabled, err := store.CreateAutomationScript(ctx, "off", nil, "noop()", false, 0)
	require.NoError(t, err)
	// same position as alpha, name breaks the tie
	tied, err := store.CreateAutomationScript(ctx, "zeta", nil, "noop()", true, 1)
	require.NoError(t, err)

	for _, s := range []*model.AutomationScript{first, second, disabled, tied} {
		require.NoError(t, store.SetScriptContentItems(ctx, s.ID, []int{item.ID}))
	}

	scripts, err := store.ListEnabledScriptsForContentItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, scripts, 3, "disabled scripts stay hidden")

	var names []string
	for _, s := range scripts {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta", "beta"}, names)
}

func TestGroupManagers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice@example.com", "x")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob@example.com", "x")
	require.NoError(t, err)

	lobby, err := store.CreateDisplayGroup(ctx, "Lobby", true)
	require.NoError(t, err)
	cafe, err := store.CreateDisplayGroup(ctx, "Cafeteria", true)
	require.NoError(t, err)

	require.NoError(t, store.SetGroupManagers(ctx, lobby.ID, []int{alice.ID}))
	require.NoError(t, store.SetGroupManagers(ctx, cafe.ID, []int{alice.ID, bob.ID}))

	mine, err := store.ListDisplayGroupsForManager(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Cafeteria", mine[0].Name)

	loaded, err := store.GetDisplayGroupByID(ctx, cafe.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{alice.ID, bob.ID}, loaded.ManagerIDs)

	// replacing the set removes old members
	require.NoError(t, store.SetGroupManagers(ctx, cafe.ID, []int{bob.ID}))
	loaded, err = store.GetDisplayGroupByID(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{bob.ID}, loaded.ManagerIDs)
}

func TestRolePermissionsFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	role, err := store.GetOrCreateRole(ctx, "Content Managers")
	require.NoError(t, err)
	again, err := store.GetOrCreateRole(ctx, "Content Managers")
	require.NoError(t, err)
	assert.Equal(t, role.ID, again.ID)

	require.NoError(t, store.SetRolePermissions(ctx, role.ID, []string{"contentitem.view"}))

	user, err := store.CreateUser(ctx, "alice@example.com", "x")
	require.NoError(t, err)
	require.NoError(t, store.AddUserToRole(ctx, user.ID, role.ID))

	loaded, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasPermission("contentitem.view"))
	assert.False(t, loaded.HasPermission("contentitem.change"))
}
