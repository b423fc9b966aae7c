// Package directory keeps the list of chat groups and the selected one.
package directory

import (
	"context"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

type Directory struct {
	log   *slog.Logger
	store contract.GroupStore
	users contract.UserSource

	mu       sync.Mutex
	groups   []domain.Group
	selected *domain.GroupID
}

var _ contract.GroupSelection = (*Directory)(nil)

func NewDirectory(log *slog.Logger, store contract.GroupStore, users contract.UserSource) *Directory {
	return &Directory{log: log, store: store, users: users}
}

// ListGroups reloads the groups, ordered by name ascending.
// On failure the previous list stays available and is returned with the error.
func (d *Directory) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := d.store.ListGroups(ctx)
	if err != nil {
		d.log.Error("Unable to list groups", "error", err)
		return d.Groups(), err
	}
	groups = slices.Clone(groups)
	slices.SortStableFunc(groups, func(a, b domain.Group) int {
		return strings.Compare(a.Name, b.Name)
	})
	d.mu.Lock()
	d.groups = groups
	d.mu.Unlock()
	return slices.Clone(groups), nil
}

// CreateGroup inserts a group owned by the current user, reloads the list
// and selects the new group. Names are not checked for uniqueness.
func (d *Directory) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		d.log.Debug("Group not created", "error", errors.ErrEmptyGroupName)
		return domain.Group{}, errors.ErrEmptyGroupName
	}
	user, ok := d.users.CurrentUser()
	if !ok {
		d.log.Debug("Group not created", "error", errors.ErrNotAuthenticated)
		return domain.Group{}, errors.ErrNotAuthenticated
	}

	group, err := d.store.InsertGroup(ctx, domain.NewGroup{Name: name, CreatedBy: user.ID})
	if err != nil {
		d.log.Error("Unable to create group", "name", name, "error", err)
		return domain.Group{}, err
	}
	if _, err := d.ListGroups(ctx); err != nil {
		// The group exists, keep it visible until the next successful reload
		d.mu.Lock()
		d.groups = insertSorted(d.groups, group)
		d.mu.Unlock()
	}
	d.Select(group.ID)
	return group, nil
}

func (d *Directory) Select(id domain.GroupID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = &id
}

func (d *Directory) Selected() (domain.GroupID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selected == nil {
		return 0, false
	}
	return *d.selected, true
}

// SelectedGroup returns the selected group when it is part of the list.
func (d *Directory) SelectedGroup() (domain.Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selected == nil {
		return domain.Group{}, false
	}
	for _, g := range d.groups {
		if g.ID == *d.selected {
			return g, true
		}
	}
	return domain.Group{}, false
}

func (d *Directory) Groups() []domain.Group {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.groups)
}

// Reset forgets groups and selection, used on sign out.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups = nil
	d.selected = nil
}

func insertSorted(groups []domain.Group, group domain.Group) []domain.Group {
	i, _ := slices.BinarySearchFunc(groups, group.Name, func(g domain.Group, name string) int {
		if g.Name <= name {
			return -1
		}
		return 1
	})
	return slices.Insert(slices.Clone(groups), i, group)
}
