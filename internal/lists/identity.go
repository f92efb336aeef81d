package lists

import (
	"strings"

	"github.com/shaunplee/superlists/internal/models"
)

// Identity is the requester on whose behalf a handler acts: either a
// registered user's email or the distinguished anonymous value. Handlers
// thread it explicitly through every call so access decisions never read
// ambient state.
type Identity struct {
	Email string
}

// Anonymous is the identity of an unauthenticated requester.
var Anonymous = Identity{}

// IdentityFor builds an Identity from an email address, normalising case the
// same way user records are stored.
func IdentityFor(email string) Identity {
	return Identity{Email: strings.ToLower(strings.TrimSpace(email))}
}

// IsAnonymous reports whether the identity carries no user.
func (i Identity) IsAnonymous() bool { return i.Email == "" }

// MayAppend decides whether the identity may add items to the list: an
// unowned list accepts anyone, an owned list only its owner or a member of
// its share set. The list's SharedWith association must be loaded.
func MayAppend(identity Identity, list models.List) bool {
	if list.OwnerEmail == nil {
		return true
	}
	if identity.IsAnonymous() {
		return false
	}
	if identity.Email == *list.OwnerEmail {
		return true
	}
	for _, u := range list.SharedWith {
		if u.Email == identity.Email {
			return true
		}
	}
	return false
}
