package catalog

import (
	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Actor is the caller of a catalog operation. The zero value is anonymous.
type Actor struct {
	ID      uint
	IsStaff bool
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// Authenticated reports whether the actor is a known user.
func (a Actor) Authenticated() bool {
	return a.ID != 0
}

// CanModify reports whether actor may update or delete book: staff may
// modify any book, everyone else only the books they own.
func CanModify(actor Actor, book *entities.Book) bool {
	if !actor.Authenticated() {
		return false
	}
	if actor.IsStaff {
		return true
	}
	return book.IsOwnedBy(actor.ID)
}

// authorizeWrite returns ErrUnauthorized for anonymous actors and
// ErrPermissionDenied when actor may not modify book.
func authorizeWrite(actor Actor, book *entities.Book) error {
	if !actor.Authenticated() {
		return apperrors.ErrUnauthorized
	}
	if !CanModify(actor, book) {
		return apperrors.PermissionDenied()
	}
	return nil
}
