package identity_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-forumview/pkg/identity"
)

func TestMember(t *testing.T) {
	guest := identity.Anonymous()
	if guest.Exists() || guest.IsAdmin() {
		t.Fatalf("guest must not exist or be admin")
	}
	if guest.Name() != "Guest" {
		t.Fatalf("unexpected guest name %q", guest.Name())
	}

	// An admin flag without a registered id is ignored.
	ghost := identity.Member{Admin: true}
	if ghost.IsAdmin() {
		t.Fatalf("unregistered admin flag must not grant admin")
	}

	admin := identity.Member{UserID: 42, Username: "ada", Admin: true}
	if !admin.Exists() || !admin.IsAdmin() || admin.Name() != "ada" {
		t.Fatalf("unexpected admin member %+v", admin)
	}
}

func TestStatic(t *testing.T) {
	user, err := identity.Static(nil).Myself(context.Background())
	if err != nil {
		t.Fatalf("myself: %v", err)
	}
	if user.Exists() {
		t.Fatalf("nil static user should resolve to guest")
	}

	member := identity.Member{UserID: 7, Username: "grace"}
	user, err = identity.Static(member).Myself(context.Background())
	if err != nil || user.ID() != 7 {
		t.Fatalf("unexpected static user %+v (%v)", user, err)
	}
}
