// Package identity describes the user a view renders for.
package identity

import (
	"context"
	"strings"
)

// User is the subset of the host user model the view layer consults.
type User interface {
	ID() int
	Name() string
	// Exists reports whether the user is registered (not a guest).
	Exists() bool
	IsAdmin() bool
}

// Member is a plain User implementation.
type Member struct {
	UserID   int    `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Admin    bool   `json:"admin" yaml:"admin"`
}

var _ User = Member{}

// Anonymous returns the guest user.
func Anonymous() Member {
	return Member{}
}

func (m Member) ID() int { return m.UserID }

func (m Member) Name() string {
	if name := strings.TrimSpace(m.Username); name != "" {
		return name
	}
	return "Guest"
}

func (m Member) Exists() bool { return m.UserID > 0 }

func (m Member) IsAdmin() bool { return m.Exists() && m.Admin }

// Provider resolves the current user for a request.
type Provider interface {
	Myself(ctx context.Context) (User, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (User, error)

func (fn ProviderFunc) Myself(ctx context.Context) (User, error) {
	return fn(ctx)
}

// Static always returns the same user.
func Static(user User) Provider {
	return ProviderFunc(func(context.Context) (User, error) {
		if user == nil {
			return Anonymous(), nil
		}
		return user, nil
	})
}
