package visibility

import (
	"errors"
	"testing"

	"todolists/models"
)

func owner(id int64) *int64 { return &id }

func TestVisibleAnonymousOnlyPublic(t *testing.T) {
	p := Visible(models.Anonymous())

	terms := p.Terms()
	if len(terms) != 1 || terms[0].Kind != KindPublic {
		t.Fatalf("expected single public term, got %v", p)
	}

	if !p.Matches(models.List{Public: true, OwnerID: owner(1)}) {
		t.Fatalf("expected public list to match")
	}
	if p.Matches(models.List{Public: false, OwnerID: owner(1)}) {
		t.Fatalf("expected private list to be hidden")
	}
	if p.Matches(models.List{Public: false}) {
		t.Fatalf("expected unowned private list to be hidden from anonymous viewer")
	}
}

func TestVisibleIdentifiedAddsOwnership(t *testing.T) {
	p := Visible(models.Viewer{UserID: 7, Username: "u7"})

	if got := p.String(); got != "public OR owned_by(7)" {
		t.Fatalf("unexpected predicate %q", got)
	}

	cases := []struct {
		name string
		list models.List
		want bool
	}{
		{"own private", models.List{OwnerID: owner(7)}, true},
		{"own public", models.List{OwnerID: owner(7), Public: true}, true},
		{"other public", models.List{OwnerID: owner(8), Public: true}, true},
		{"other private", models.List{OwnerID: owner(8)}, false},
		{"unowned private", models.List{}, false},
	}
	for _, tc := range cases {
		if got := p.Matches(tc.list); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestOwnedOnly(t *testing.T) {
	if _, err := OwnedOnly(models.Anonymous()); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}

	p, err := OwnedOnly(models.Viewer{UserID: 3})
	if err != nil {
		t.Fatalf("OwnedOnly returned error: %v", err)
	}
	if len(p.Terms()) != 1 {
		t.Fatalf("expected a single term, got %v", p)
	}
	if p.Matches(models.List{OwnerID: owner(4), Public: true}) {
		t.Fatalf("owned-only predicate must not match public lists of others")
	}
	if !p.Matches(models.List{OwnerID: owner(3)}) {
		t.Fatalf("expected own list to match")
	}
}

func TestOrDropsDuplicatesAndSentinelOwners(t *testing.T) {
	p := Any(Public(), Public(), OwnedBy(0), OwnedBy(-1), OwnedBy(2), OwnedBy(2))

	if got := len(p.Terms()); got != 2 {
		t.Fatalf("expected 2 terms, got %d (%v)", got, p)
	}
}

func TestEmptyPredicateMatchesNothing(t *testing.T) {
	var p Predicate
	if !p.IsEmpty() {
		t.Fatalf("expected zero predicate to be empty")
	}
	if p.Matches(models.List{Public: true}) {
		t.Fatalf("empty predicate must not match")
	}
}
