// Package access decides who may read or modify an item.
//
// The functions here are pure: they look only at the requester and the item
// and never touch storage. The same decision is used for item records and
// for the blobs behind them.
package access

import "gifstore/internal/model"

// Identity is an authenticated requester. A nil *Identity means anonymous.
type Identity struct {
	ID       string
	Email    string
	Fullname string
}

// Summary projects the identity onto the owner block used by item views.
func (i *Identity) Summary() model.UserSummary {
	return model.UserSummary{ID: i.ID, Fullname: i.Fullname, Email: i.Email}
}

// Decision is the outcome of a policy check.
type Decision int

const (
	Allow Decision = iota
	// DenyUnauthenticated means no identity was presented.
	DenyUnauthenticated
	// DenyForbidden means an identity was presented but it does not own the item.
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// Allowed reports whether d grants access.
func (d Decision) Allowed() bool { return d == Allow }

// Read allows public items to everyone and private items to their owner.
func Read(requester *Identity, item *model.Item) Decision {
	if item.IsPublic {
		return Allow
	}
	return owner(requester, item)
}

// Write allows only the owner. Visibility does not matter.
func Write(requester *Identity, item *model.Item) Decision {
	return owner(requester, item)
}

func owner(requester *Identity, item *model.Item) Decision {
	if requester == nil {
		return DenyUnauthenticated
	}
	if requester.ID == "" || requester.ID != item.OwnerID {
		return DenyForbidden
	}
	return Allow
}
