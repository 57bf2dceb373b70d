// Package types provides type definitions for structured data used throughout the ats-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"regexp"
	"strings"
)

// Section is a titled, independently revisable unit of résumé content.
// OriginalContent is assigned the first time the section is observed and is never overwritten.
type Section struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	OriginalContent string `json:"originalContent,omitempty"`
}

// Baseline returns the content used as the comparison baseline.
// Sections without a recorded original fall back to their current content.
func (s Section) Baseline() string {
	if s.OriginalContent == "" {
		return s.Content
	}
	return s.OriginalContent
}

// Modified reports whether the current content differs from the baseline.
func (s Section) Modified() bool {
	return s.Content != s.Baseline()
}

// SectionSet is an ordered sequence of sections; order is display order.
type SectionSet []Section

// IDs returns the section identifiers in display order.
func (ss SectionSet) IDs() []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}

// Clone returns a copy of the set that shares no backing array with ss.
func (ss SectionSet) Clone() SectionSet {
	if ss == nil {
		return nil
	}
	out := make(SectionSet, len(ss))
	copy(out, ss)
	return out
}

// Find returns the section with the given id.
func (ss SectionSet) Find(id string) (Section, bool) {
	for _, s := range ss {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// bulletMarker matches a bullet character or list number at the start of a line.
var bulletMarker = regexp.MustCompile(`^\s*(?:[-*•▪◦‣–—>]|\d{1,2}[.)])\s+`)

// BulletText strips a leading bullet marker from line. ok is false when the line
// is not a bullet.
func BulletText(line string) (text string, ok bool) {
	loc := bulletMarker.FindStringIndex(line)
	if loc == nil {
		return line, false
	}
	return strings.TrimSpace(line[loc[1]:]), true
}

// ContentLines splits content into lines, normalizing CRLF line endings.
func ContentLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
