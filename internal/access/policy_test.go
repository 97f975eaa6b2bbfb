package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gifstore/internal/model"
)

func TestRead(t *testing.T) {
	owner := &Identity{ID: "owner"}
	other := &Identity{ID: "other"}

	tests := []struct {
		name      string
		requester *Identity
		public    bool
		want      Decision
	}{
		{"anonymous on public", nil, true, Allow},
		{"anonymous on private", nil, false, DenyUnauthenticated},
		{"owner on private", owner, false, Allow},
		{"owner on public", owner, true, Allow},
		{"other on public", other, true, Allow},
		{"other on private", other, false, DenyForbidden},
		{"empty id on private", &Identity{}, false, DenyForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &model.Item{OwnerID: "owner", IsPublic: tt.public}
			assert.Equal(t, tt.want, Read(tt.requester, item))
		})
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name      string
		requester *Identity
		public    bool
		want      Decision
	}{
		{"owner on private", &Identity{ID: "owner"}, false, Allow},
		{"owner on public", &Identity{ID: "owner"}, true, Allow},
		{"anonymous on public", nil, true, DenyUnauthenticated},
		{"anonymous on private", nil, false, DenyUnauthenticated},
		{"other on public", &Identity{ID: "other"}, true, DenyForbidden},
		{"other on private", &Identity{ID: "other"}, false, DenyForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &model.Item{OwnerID: "owner", IsPublic: tt.public}
			assert.Equal(t, tt.want, Write(tt.requester, item))
		})
	}
}

// Anonymous read succeeds exactly when the item is public.
func TestAnonymousReadMatchesVisibility(t *testing.T) {
	for _, public := range []bool{true, false} {
		item := &model.Item{OwnerID: "owner", IsPublic: public}
		assert.Equal(t, public, Read(nil, item).Allowed())
	}
}

func TestNonOwnerNeverWrites(t *testing.T) {
	for _, id := range []string{"a", "b", "OWNER", "owner "} {
		for _, public := range []bool{true, false} {
			item := &model.Item{OwnerID: "owner", IsPublic: public}
			assert.False(t, Write(&Identity{ID: id}, item).Allowed(), id)
		}
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny_unauthenticated", DenyUnauthenticated.String())
	assert.Equal(t, "deny_forbidden", DenyForbidden.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
