package labels

import (
	"encoding/json"
	"fmt"
)

// NamedEntityType is the kind of thing a named entity span refers to.
type NamedEntityType string

// Named entity type constants.
const (
	Person   NamedEntityType = "person"
	Group    NamedEntityType = "group"
	Citation NamedEntityType = "citation"
)

// validNamedEntityTypes is the set of valid named entity types.
var validNamedEntityTypes = map[NamedEntityType]bool{
	Person:   true,
	Group:    true,
	Citation: true,
}

// namedEntityLabels maps classifier labels to named entity types.
var namedEntityLabels = []classifierLabel[NamedEntityType]{
	{"מקור", Hebrew, Citation},
	{"בן-אדם", Hebrew, Person},
	{"קבוצה", Hebrew, Group},

	{"Person", English, Person},
	{"Group", English, Group},
	{"Citation", English, Citation},
}

var namedEntityIndex = index(namedEntityLabels)

// NamedEntityTypeFromLabel converts a classifier label to a NamedEntityType.
func NamedEntityTypeFromLabel(label string) (NamedEntityType, error) {
	return lookup(namedEntityIndex, "named entity type", label)
}

// ParseNamedEntityType converts an enum value such as "citation" back to a
// NamedEntityType. It does not accept classifier labels.
func ParseNamedEntityType(value string) (NamedEntityType, error) {
	t := NamedEntityType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid named entity type: %q", value)
	}
	return t, nil
}

// NamedEntityLabels returns the classifier labels for lang, or every label
// when lang is empty.
func NamedEntityLabels(lang Language) []string {
	return labelsFor(namedEntityLabels, lang)
}

// IsValid returns true if the named entity type is valid.
func (t NamedEntityType) IsValid() bool {
	return validNamedEntityTypes[t]
}

// String returns the enum value.
func (t NamedEntityType) String() string {
	return string(t)
}

// UnmarshalJSON rejects values outside the enum.
func (t *NamedEntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseNamedEntityType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
