package database

import (
	"strings"

	"todolists/services/visibility"
)

// compilePredicate renders a visibility predicate as a SQL condition over the
// lists table aliased as alias. An empty predicate compiles to a condition
// that matches no row.
func compilePredicate(p visibility.Predicate, alias string) (string, []any) {
	if p.IsEmpty() {
		return "0 = 1", nil
	}

	terms := p.Terms()
	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms))
	for _, t := range terms {
		switch t.Kind {
		case visibility.KindPublic:
			clauses = append(clauses, alias+".public = 1")
		case visibility.KindOwnedBy:
			clauses = append(clauses, alias+".owner_id = ?")
			args = append(args, t.OwnerID)
		}
	}
	if len(clauses) == 0 {
		return "0 = 1", nil
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}
