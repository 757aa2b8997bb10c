package eeformula

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/njchilds90/eeformula/internal/suggest"
)

var (
	// ErrEmptyQuery is returned by Resolve for an empty or blank query.
	ErrEmptyQuery = errors.New("empty formula name")

	// ErrNotFound is returned by Resolve when no catalog name contains the
	// query.
	ErrNotFound = errors.New("formula not found")
)

// Resolve returns the first catalog entry, in catalog order, whose name
// contains query ignoring case. Only that first match is ever returned,
// even when the query is a substring of several names.
func Resolve(query string) (Entry, error) {
	return resolveIn(catalog, query)
}

func resolveIn(entries []Entry, query string) (Entry, error) {
	if strings.TrimSpace(query) == "" {
		return Entry{}, ErrEmptyQuery
	}
	q := foldName(query)
	for _, e := range entries {
		if strings.Contains(foldName(e.Name), q) {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// foldName NFC-normalises and lower-cases s. A fresh Caser is built per
// call because Casers are not safe for concurrent use.
func foldName(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// Suggest returns up to n catalog names that are close to query, for use
// after Resolve has reported ErrNotFound.
func Suggest(query string, n int) []string {
	return suggest.FindSimilar(query, Names(), n)
}
