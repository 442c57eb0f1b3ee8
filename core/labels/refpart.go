package labels

import (
	"encoding/json"
	"fmt"
)

// RefPartType is the role a sub-span plays inside a citation.
type RefPartType string

// Ref part type constants.
const (
	Named       RefPartType = "named"
	Numbered    RefPartType = "numbered"
	DH          RefPartType = "dibur_hamatchil"
	RangeSymbol RefPartType = "range_symbol"
	Range       RefPartType = "range"
	Relative    RefPartType = "relative"
	Ibid        RefPartType = "ibid"
	NonCTS      RefPartType = "non_cts"
)

// validRefPartTypes is the set of valid ref part types.
var validRefPartTypes = map[RefPartType]bool{
	Named:       true,
	Numbered:    true,
	DH:          true,
	RangeSymbol: true,
	Range:       true,
	Relative:    true,
	Ibid:        true,
	NonCTS:      true,
}

// refPartLabels maps classifier labels to ref part types.
// Range is assigned when parts are combined, never by the classifier.
var refPartLabels = []classifierLabel[RefPartType]{
	{"כותרת", Hebrew, Named},
	{"מספר", Hebrew, Numbered},
	{"דה", Hebrew, DH},
	{"סימן-טווח", Hebrew, RangeSymbol},
	{"לקמן-להלן", Hebrew, Relative},
	{"שם", Hebrew, Ibid},
	{"לא-רציף", Hebrew, NonCTS},

	{"title", English, Named},
	{"number", English, Numbered},
	{"DH", English, DH},
	{"range-symbol", English, RangeSymbol},
	{"dir-ibid", English, Relative},
	{"ibid", English, Ibid},
	{"non-cts", English, NonCTS},
}

var refPartIndex = index(refPartLabels)

// RefPartTypeFromLabel converts a classifier label to a RefPartType.
func RefPartTypeFromLabel(label string) (RefPartType, error) {
	return lookup(refPartIndex, "ref part type", label)
}

// ParseRefPartType converts an enum value such as "dibur_hamatchil" back to
// a RefPartType. It does not accept classifier labels.
func ParseRefPartType(value string) (RefPartType, error) {
	t := RefPartType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid ref part type: %q", value)
	}
	return t, nil
}

// RefPartLabels returns the classifier labels for lang, or every label when
// lang is empty.
func RefPartLabels(lang Language) []string {
	return labelsFor(refPartLabels, lang)
}

// IsValid returns true if the ref part type is valid.
func (t RefPartType) IsValid() bool {
	return validRefPartTypes[t]
}

// String returns the enum value.
func (t RefPartType) String() string {
	return string(t)
}

// UnmarshalJSON rejects values outside the enum.
func (t *RefPartType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseRefPartType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
