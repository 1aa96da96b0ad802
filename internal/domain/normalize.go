package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Source field keys.
const (
	keyName           = "dba"
	keyBuilding       = "building"
	keyStreet         = "street"
	keyZipcode        = "zipcode"
	keyPhone          = "phone"
	keyBoro           = "boro"
	keyBorough        = "borough"
	keyGrade          = "grade"
	keyScore          = "score"
	keyInspectionDate = "inspection_date"
	keyViolation      = "violation_description"
)

// Normalize converts a raw source row into a Record. It never fails:
// missing, empty or wrong-typed values become absent.
func Normalize(raw RawRecord) Record {
	borough := stringField(raw, keyBoro)
	if borough == "" {
		borough = stringField(raw, keyBorough)
	}

	score, hasScore := scoreField(raw, keyScore)

	return Record{
		name:           stringField(raw, keyName),
		building:       stringField(raw, keyBuilding),
		street:         stringField(raw, keyStreet),
		zipcode:        stringField(raw, keyZipcode),
		phone:          stringField(raw, keyPhone),
		borough:        borough,
		grade:          normalizeGrade(stringField(raw, keyGrade)),
		score:          score,
		hasScore:       hasScore,
		inspectionDate: truncateDate(stringField(raw, keyInspectionDate)),
		violation:      stringField(raw, keyViolation),
	}
}

// NormalizeAll normalizes a batch, preserving order.
func NormalizeAll(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// stringField returns the value at key if it is a JSON string, else "".
func stringField(raw RawRecord, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return s
}

// scoreField accepts a numeric string or a JSON number. NaN and infinities
// are rejected.
func scoreField(raw RawRecord, key string) (float64, bool) {
	var (
		v   float64
		err error
	)
	switch val := raw[key].(type) {
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	case json.Number:
		v, err = val.Float64()
	case float64:
		v = val
	case int:
		v = float64(val)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeGrade is a closed-set check: exact "A", "B" or "C" only.
func normalizeGrade(value string) Grade {
	g := Grade(value)
	if g.Valid() {
		return g
	}
	return ""
}

// truncateDate keeps the part before the first time separator,
// e.g. "2024-03-14T00:00:00.000" -> "2024-03-14".
func truncateDate(value string) string {
	if i := strings.IndexByte(value, 'T'); i >= 0 {
		return value[:i]
	}
	return value
}
