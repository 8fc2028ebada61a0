// Package visibility builds the predicates that decide which lists a viewer
// may read or modify.
//
// A Predicate is a disjunction of terms. A list satisfies the predicate when
// it satisfies any one term. The persistence layer compiles predicates into
// query conditions; Matches evaluates them in memory.
package visibility

import (
	"errors"
	"fmt"
	"strings"

	"todolists/models"
)

// ErrAuthRequired is returned when an operation needs an identified viewer.
var ErrAuthRequired = errors.New("authentication required")

// Kind enumerates the supported predicate terms.
type Kind int

const (
	// KindPublic matches lists flagged public.
	KindPublic Kind = iota + 1
	// KindOwnedBy matches lists owned by Term.OwnerID.
	KindOwnedBy
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindOwnedBy:
		return "owned_by"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Term is a single condition over a list.
type Term struct {
	Kind    Kind
	OwnerID int64
}

// Public matches every public list.
func Public() Term {
	return Term{Kind: KindPublic}
}

// OwnedBy matches the lists owned by the given user id.
func OwnedBy(userID int64) Term {
	return Term{Kind: KindOwnedBy, OwnerID: userID}
}

func (t Term) matches(l models.List) bool {
	switch t.Kind {
	case KindPublic:
		return l.Public
	case KindOwnedBy:
		return l.OwnerID != nil && *l.OwnerID == t.OwnerID
	default:
		return false
	}
}

func (t Term) String() string {
	if t.Kind == KindOwnedBy {
		return fmt.Sprintf("owned_by(%d)", t.OwnerID)
	}
	return t.Kind.String()
}

// Predicate is an OR-combination of terms. The zero value matches nothing.
type Predicate struct {
	terms []Term
}

// Any combines terms with logical OR.
func Any(terms ...Term) Predicate {
	return Predicate{}.Or(terms...)
}

// Or returns a new predicate that additionally accepts the given terms.
// Duplicate terms are dropped.
func (p Predicate) Or(terms ...Term) Predicate {
	out := make([]Term, 0, len(p.terms)+len(terms))
	out = append(out, p.terms...)
	for _, t := range terms {
		if t.Kind == KindOwnedBy && t.OwnerID <= 0 {
			continue
		}
		if containsTerm(out, t) {
			continue
		}
		out = append(out, t)
	}
	return Predicate{terms: out}
}

// Terms returns a copy of the predicate's terms in insertion order.
func (p Predicate) Terms() []Term {
	out := make([]Term, len(p.terms))
	copy(out, p.terms)
	return out
}

// IsEmpty reports whether the predicate has no terms and so matches nothing.
func (p Predicate) IsEmpty() bool {
	return len(p.terms) == 0
}

// Matches reports whether the list satisfies at least one term.
func (p Predicate) Matches(l models.List) bool {
	for _, t := range p.terms {
		if t.matches(l) {
			return true
		}
	}
	return false
}

func (p Predicate) String() string {
	if len(p.terms) == 0 {
		return "none"
	}
	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " OR ")
}

func containsTerm(terms []Term, t Term) bool {
	for _, existing := range terms {
		if existing == t {
			return true
		}
	}
	return false
}

// Visible returns the read predicate for a viewer: public lists, plus the
// viewer's own lists when the viewer is identified.
func Visible(v models.Viewer) Predicate {
	p := Any(Public())
	if !v.IsAnonymous() {
		p = p.Or(OwnedBy(v.UserID))
	}
	return p
}

// OwnedOnly returns the predicate restricting to the viewer's own lists.
// Anonymous viewers get ErrAuthRequired rather than an empty predicate.
func OwnedOnly(v models.Viewer) (Predicate, error) {
	if v.IsAnonymous() {
		return Predicate{}, ErrAuthRequired
	}
	return Any(OwnedBy(v.UserID)), nil
}
