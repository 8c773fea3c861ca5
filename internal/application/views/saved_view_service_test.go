package views

import (
	"context"
	"sort"
	"testing"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSavedViewRepo struct {
	views map[uuid.UUID]*views.SavedView
}

func newFakeSavedViewRepo() *fakeSavedViewRepo {
	return &fakeSavedViewRepo{views: map[uuid.UUID]*views.SavedView{}}
}

func (f *fakeSavedViewRepo) Save(ctx context.Context, view *views.SavedView) error {
	f.views[view.ID] = view
	return nil
}

func (f *fakeSavedViewRepo) FindByID(ctx context.Context, id uuid.UUID) (*views.SavedView, error) {
	view, ok := f.views[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return view, nil
}

func (f *fakeSavedViewRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*views.SavedView, error) {
	var result []*views.SavedView
	for _, view := range f.views {
		if view.OwnerID == ownerID {
			result = append(result, view)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (f *fakeSavedViewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.views[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.views, id)
	return nil
}

type fakeUserRepo struct {
	identity.UserRepository
	users map[uuid.UUID]*identity.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

type fakeUISettingsRepo struct {
	settings map[uuid.UUID]*views.UISettings
}

func newFakeUISettingsRepo() *fakeUISettingsRepo {
	return &fakeUISettingsRepo{settings: map[uuid.UUID]*views.UISettings{}}
}

func (f *fakeUISettingsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*views.UISettings, error) {
	stored, ok := f.settings[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return stored, nil
}

func (f *fakeUISettingsRepo) Save(ctx context.Context, settings *views.UISettings) error {
	f.settings[settings.UserID] = settings
	return nil
}

func TestSavedViewService_CreateAndList(t *testing.T) {
	repo := newFakeSavedViewRepo()
	service := NewSavedViewService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	created, err := service.Create(context.Background(), owner, CreateSavedViewRequest{
		Name:          "Inbox",
		ShowInSidebar: true,
		SortField:     "added",
		SortReverse:   true,
		FilterRules:   []FilterRuleDTO{{RuleType: 6, Value: "true"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Inbox", created.Name)
	assert.Equal(t, owner.UserID, created.Owner)
	assert.Equal(t, "added", created.SortField)
	require.Len(t, created.FilterRules, 1)
	assert.Equal(t, 6, created.FilterRules[0].RuleType)

	listed, err := service.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), owner, CreateSavedViewRequest{Name: " "})
		require.Error(t, err)
	})
}

func TestSavedViewService_StrictOwnerScoping(t *testing.T) {
	repo := newFakeSavedViewRepo()
	service := NewSavedViewService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	created, err := service.Create(context.Background(), owner, CreateSavedViewRequest{Name: "Private"})
	require.NoError(t, err)

	t.Run("other users see nothing", func(t *testing.T) {
		other := shared.Viewer{UserID: uuid.New()}
		listed, err := service.List(context.Background(), other)
		require.NoError(t, err)
		assert.Empty(t, listed)

		_, err = service.GetByID(context.Background(), other, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("superusers see nothing either", func(t *testing.T) {
		admin := shared.Viewer{UserID: uuid.New(), Superuser: true}
		listed, err := service.List(context.Background(), admin)
		require.NoError(t, err)
		assert.Empty(t, listed)

		_, err = service.GetByID(context.Background(), admin, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = service.Delete(context.Background(), admin, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSavedViewService_Update(t *testing.T) {
	repo := newFakeSavedViewRepo()
	service := NewSavedViewService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	created, err := service.Create(context.Background(), owner, CreateSavedViewRequest{
		Name:        "Old",
		FilterRules: []FilterRuleDTO{{RuleType: 3, Value: "abc"}},
	})
	require.NoError(t, err)

	name := "New"
	dashboard := true
	rules := []FilterRuleDTO{{RuleType: 4, Value: "def"}, {RuleType: 5, Value: "ghi"}}
	updated, err := service.Update(context.Background(), owner, created.ID, UpdateSavedViewRequest{
		Name:            &name,
		ShowOnDashboard: &dashboard,
		FilterRules:     &rules,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.True(t, updated.ShowOnDashboard)
	require.Len(t, updated.FilterRules, 2)
	assert.Equal(t, 4, updated.FilterRules[0].RuleType)
}

func TestSavedViewService_Delete(t *testing.T) {
	repo := newFakeSavedViewRepo()
	service := NewSavedViewService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	created, err := service.Create(context.Background(), owner, CreateSavedViewRequest{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), owner, created.ID))
	_, err = service.GetByID(context.Background(), owner, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUISettingsService_GetDefaults(t *testing.T) {
	users := &fakeUserRepo{users: map[uuid.UUID]*identity.User{}}
	settingsRepo := newFakeUISettingsRepo()
	service := NewUISettingsService(settingsRepo, users)

	user, err := identity.NewUser("alice", "correct horse")
	require.NoError(t, err)
	user.IsSuperuser = true
	users.users[user.ID] = user

	resp, err := service.Get(context.Background(), user.Viewer())
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.IsSuperuser)
	assert.Contains(t, resp.User.Groups, "admin")
	assert.Empty(t, resp.Settings)
	assert.Contains(t, resp.Permissions, "view_document")
}

func TestUISettingsService_Replace(t *testing.T) {
	users := &fakeUserRepo{users: map[uuid.UUID]*identity.User{}}
	settingsRepo := newFakeUISettingsRepo()
	service := NewUISettingsService(settingsRepo, users)

	user, err := identity.NewUser("bob", "hunter2hunter2")
	require.NoError(t, err)
	users.users[user.ID] = user
	viewer := user.Viewer()

	err = service.Replace(context.Background(), viewer, ReplaceUISettingsRequest{
		Settings: map[string]interface{}{"dark_mode": true},
	})
	require.NoError(t, err)

	resp, err := service.Get(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, true, resp.Settings["dark_mode"])

	t.Run("second replace overwrites", func(t *testing.T) {
		err := service.Replace(context.Background(), viewer, ReplaceUISettingsRequest{
			Settings: map[string]interface{}{"dark_mode": false, "lang": "de"},
		})
		require.NoError(t, err)

		resp, err := service.Get(context.Background(), viewer)
		require.NoError(t, err)
		assert.Equal(t, false, resp.Settings["dark_mode"])
		assert.Equal(t, "de", resp.Settings["lang"])
	})
}
