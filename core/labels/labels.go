// Package labels maps classifier output onto the closed label sets of
// named entity spans.
//
// Classifier models emit label strings in Hebrew or English. Each string
// maps to exactly one member of NamedEntityType or RefPartType. A label
// missing from the tables means the model and the tables are out of step,
// so translation fails with a *errors.LookupError instead of falling back
// to a default member.
package labels

import (
	"sort"

	"github.com/FocuswithJustin/nespan/core/errors"
)

// Language identifies the language of a classifier label.
type Language string

// Supported classifier languages.
const (
	Hebrew  Language = "he"
	English Language = "en"
)

// classifierLabel is one row of a mapping table.
type classifierLabel[T any] struct {
	label string
	lang  Language
	value T
}

// index builds the lookup map for a mapping table.
func index[T any](rows []classifierLabel[T]) map[string]T {
	m := make(map[string]T, len(rows))
	for _, row := range rows {
		m[row.label] = row.value
	}
	return m
}

// labelsFor returns the sorted labels of rows in lang. An empty lang
// selects every row.
func labelsFor[T any](rows []classifierLabel[T], lang Language) []string {
	var out []string
	for _, row := range rows {
		if lang == "" || row.lang == lang {
			out = append(out, row.label)
		}
	}
	sort.Strings(out)
	return out
}

// lookup translates label through m, reporting a LookupError for kind on a miss.
func lookup[T any](m map[string]T, kind, label string) (T, error) {
	v, ok := m[label]
	if !ok {
		var zero T
		return zero, errors.NewLookup(kind, label)
	}
	return v, nil
}
