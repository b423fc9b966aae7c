package directory

import (
	"context"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/mocks"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newDirectory(t *testing.T) (*Directory, *mocks.MockGroupStore, *mocks.MockUserSource) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockGroupStore(ctrl)
	users := mocks.NewMockUserSource(ctrl)
	return NewDirectory(logs.GetLoggerFromLevel(slog.LevelDebug), store, users), store, users
}

func TestDirectory_ListGroups_Sorted_By_Name(t *testing.T) {
	req := require.New(t)
	d, store, _ := newDirectory(t)
	store.EXPECT().ListGroups(gomock.Any()).Return([]domain.Group{
		{ID: 3, Name: "zeta"}, {ID: 1, Name: "alpha"}, {ID: 2, Name: "beta"},
	}, nil)

	groups, err := d.ListGroups(context.Background())
	req.NoError(err)
	req.Equal([]string{"alpha", "beta", "zeta"}, names(groups))
	req.Equal(groups, d.Groups())
}

func TestDirectory_ListGroups_Keeps_Stale_List_On_Failure(t *testing.T) {
	req := require.New(t)
	d, store, _ := newDirectory(t)
	previous := []domain.Group{{ID: 1, Name: "alpha"}}
	store.EXPECT().ListGroups(gomock.Any()).Return(previous, nil)
	_, err := d.ListGroups(context.Background())
	req.NoError(err)

	store.EXPECT().ListGroups(gomock.Any()).Return(nil, errors.ErrBackendUnavailable)
	groups, err := d.ListGroups(context.Background())
	req.ErrorIs(err, errors.ErrBackendUnavailable)
	req.Equal(previous, groups)
	req.Equal(previous, d.Groups())
}

func TestDirectory_CreateGroup_Selects_It(t *testing.T) {
	req := require.New(t)
	d, store, users := newDirectory(t)
	users.EXPECT().CurrentUser().Return(domain.User{ID: "u1"}, true)
	general := domain.Group{ID: 7, Name: "general"}

	store.EXPECT().InsertGroup(gomock.Any(), domain.NewGroup{Name: "general", CreatedBy: "u1"}).Return(general, nil)
	store.EXPECT().ListGroups(gomock.Any()).Return([]domain.Group{
		{ID: 1, Name: "random"}, general, {ID: 2, Name: "alpha"},
	}, nil)

	// When user creates group "general"
	group, err := d.CreateGroup(context.Background(), " general ")
	req.NoError(err)
	req.Equal(general, group)

	// Then it appears sorted and becomes selected
	req.Equal([]string{"alpha", "general", "random"}, names(d.Groups()))
	selected, ok := d.Selected()
	req.True(ok)
	req.Equal(general.ID, selected)
	selectedGroup, ok := d.SelectedGroup()
	req.True(ok)
	req.Equal(general, selectedGroup)
}

func TestDirectory_CreateGroup_Keeps_New_Group_When_Reload_Fails(t *testing.T) {
	req := require.New(t)
	d, store, users := newDirectory(t)
	users.EXPECT().CurrentUser().Return(domain.User{ID: "u1"}, true)
	store.EXPECT().ListGroups(gomock.Any()).Return([]domain.Group{{ID: 1, Name: "alpha"}, {ID: 2, Name: "zeta"}}, nil)
	_, err := d.ListGroups(context.Background())
	req.NoError(err)

	store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Return(domain.Group{ID: 3, Name: "middle"}, nil)
	store.EXPECT().ListGroups(gomock.Any()).Return(nil, errors.ErrBackendUnavailable)

	_, err = d.CreateGroup(context.Background(), "middle")
	req.NoError(err)
	req.Equal([]string{"alpha", "middle", "zeta"}, names(d.Groups()))
}

func TestDirectory_CreateGroup_Rejections(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		req := require.New(t)
		d, store, _ := newDirectory(t)
		store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Times(0)

		_, err := d.CreateGroup(context.Background(), "   ")
		req.ErrorIs(err, errors.ErrEmptyGroupName)
		_, ok := d.Selected()
		req.False(ok)
	})

	t.Run("no user", func(t *testing.T) {
		req := require.New(t)
		d, store, users := newDirectory(t)
		users.EXPECT().CurrentUser().Return(domain.User{}, false)
		store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Times(0)

		_, err := d.CreateGroup(context.Background(), "general")
		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})

	t.Run("backend failure", func(t *testing.T) {
		req := require.New(t)
		d, store, users := newDirectory(t)
		users.EXPECT().CurrentUser().Return(domain.User{ID: "u1"}, true)
		store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Return(domain.Group{}, errors.ErrBackendUnavailable)

		_, err := d.CreateGroup(context.Background(), "general")
		req.ErrorIs(err, errors.ErrBackendUnavailable)
		_, ok := d.Selected()
		req.False(ok)
	})
}

func TestDirectory_Duplicate_Names_Allowed(t *testing.T) {
	req := require.New(t)
	d, store, users := newDirectory(t)
	users.EXPECT().CurrentUser().Return(domain.User{ID: "u1"}, true).Times(2)
	store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Return(domain.Group{ID: 1, Name: "same"}, nil)
	store.EXPECT().InsertGroup(gomock.Any(), gomock.Any()).Return(domain.Group{ID: 2, Name: "same"}, nil)
	store.EXPECT().ListGroups(gomock.Any()).Return([]domain.Group{{ID: 1, Name: "same"}}, nil)
	store.EXPECT().ListGroups(gomock.Any()).Return([]domain.Group{{ID: 1, Name: "same"}, {ID: 2, Name: "same"}}, nil)

	_, err := d.CreateGroup(context.Background(), "same")
	req.NoError(err)
	_, err = d.CreateGroup(context.Background(), "same")
	req.NoError(err)
	req.Len(d.Groups(), 2)
}

func names(groups []domain.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}
