package lists

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"todolists/models"
)

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateListFields cleans and checks list fields. The title is required.
func ValidateListFields(fields models.ListFields) (models.ListFields, error) {
	var verr ValidationError

	fields.Title = normalize(fields.Title)
	if fields.Title == "" {
		verr.add("title", "is required")
	} else if n := utf8.RuneCountInString(fields.Title); n > models.MaxListTitleLength {
		verr.add("title", fmt.Sprintf("must be at most %d characters (it has %d)", models.MaxListTitleLength, n))
	}

	return fields, verr.orNil()
}

// ValidateEntryFields cleans and checks entry fields.
func ValidateEntryFields(fields models.EntryFields) (models.EntryFields, error) {
	var verr ValidationError

	fields.Text = normalize(fields.Text)
	n := utf8.RuneCountInString(fields.Text)
	switch {
	case n < models.MinEntryTextLength:
		verr.add("text", fmt.Sprintf("must be at least %d characters (it has %d)", models.MinEntryTextLength, n))
	case n > models.MaxEntryTextLength:
		verr.add("text", fmt.Sprintf("must be at most %d characters (it has %d)", models.MaxEntryTextLength, n))
	}

	return fields, verr.orNil()
}
