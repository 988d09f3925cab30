package repo

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/store"
)

// Users stores registered accounts under the "users" key. Users are
// created once via registration and never deleted.
type Users struct {
	st  *store.Store
	bus *bus.Bus
}

// List returns all users in registration order.
func (r *Users) List() []types.User {
	return store.Read[[]types.User](r.st, keyUsers)
}

// FindByNPM looks a user up by the natural key.
func (r *Users) FindByNPM(npm string) (types.User, bool) {
	for _, u := range r.List() {
		if u.NPM == npm {
			return u, true
		}
	}
	return types.User{}, false
}

// Members returns all non-coach users, in registration order.
func (r *Users) Members() []types.User {
	var members []types.User
	for _, u := range r.List() {
		if !u.IsCoach() {
			members = append(members, u)
		}
	}
	return members
}

// SortedByName returns the members ordered by display name using
// Indonesian collation, for the coach roster.
func (r *Users) SortedByName() []types.User {
	members := r.Members()
	c := collate.New(language.Indonesian)
	sort.SliceStable(members, func(i, j int) bool {
		return c.CompareString(members[i].Nama, members[j].Nama) < 0
	})
	return members
}

// Add registers a new user. The NPM must not collide with an existing
// registration; required fields are validated before any write. The
// role is normalized once here, at the boundary.
func (r *Users) Add(u types.User) (types.User, error) {
	if err := required("npm", u.NPM); err != nil {
		return types.User{}, err
	}
	if err := required("nama", u.Nama); err != nil {
		return types.User{}, err
	}
	if err := required("password", u.Password); err != nil {
		return types.User{}, err
	}
	u.Role = types.NormalizeRole(u.Role)
	if u.Role == "" {
		u.Role = types.RoleMember
	}

	all := r.List()
	for _, existing := range all {
		if existing.NPM == u.NPM {
			return types.User{}, fmt.Errorf("user %s already exists", u.NPM)
		}
	}

	u.CreatedAt = nowMilli()
	all = append(all, u)
	if err := r.st.Write(keyUsers, all); err != nil {
		return types.User{}, err
	}
	r.bus.Publish(bus.TopicUsers)
	return u, nil
}
