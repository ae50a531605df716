package dataset

import "strings"

// Schema records which columns carry structural roles in an upload.
// Detection is name-based over normalized headers; an index of -1 means
// the role was not found.
type Schema struct {
	IdentifierColumn int `json:"identifier_column"`
	TierColumn       int `json:"tier_column"`
	GroupColumn      int `json:"group_column"`
}

// DetectSchema scans headers for the three structural roles. The tier
// column is the first whose name contains "stage" or "subscription", the
// identifier the first containing both "agency" and "name" (falling back
// to the leftmost column), and the group filter the first containing
// "group". First match wins so repeated uploads resolve identically.
func DetectSchema(t *Table) Schema {
	s := Schema{IdentifierColumn: -1, TierColumn: -1, GroupColumn: -1}
	for i, col := range t.Columns {
		n := NormalizeHeader(col)
		if s.TierColumn < 0 && (strings.Contains(n, "stage") || strings.Contains(n, "subscription")) {
			s.TierColumn = i
		}
		if s.IdentifierColumn < 0 && strings.Contains(n, "agency") && strings.Contains(n, "name") {
			s.IdentifierColumn = i
		}
		if s.GroupColumn < 0 && strings.Contains(n, "group") {
			s.GroupColumn = i
		}
	}
	if s.IdentifierColumn < 0 && len(t.Columns) > 0 {
		s.IdentifierColumn = 0
	}
	return s
}

// HasTier reports whether a tier column was found.
func (s Schema) HasTier() bool { return s.TierColumn >= 0 }

// HasGroup reports whether a group filter column was found.
func (s Schema) HasGroup() bool { return s.GroupColumn >= 0 }

// Structural returns the column indexes claimed by a role. Feature
// detection skips these so an identifier or tier column can never be
// counted as an adoption feature.
func (s Schema) Structural() map[int]bool {
	m := make(map[int]bool, 3)
	for _, idx := range []int{s.IdentifierColumn, s.TierColumn, s.GroupColumn} {
		if idx >= 0 {
			m[idx] = true
		}
	}
	return m
}
