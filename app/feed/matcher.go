package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matches reports whether any profile keyword occurs in the entry title
// followed by its summary, ignoring case.
func Matches(entry Entry, profile Profile) bool {
	if len(profile.folded) == 0 {
		return false
	}

	haystack := cases.Fold().String(entry.Title + entry.Summary)
	for _, keyword := range profile.folded {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// MatchingProfiles returns the profiles interested in entry, in the given order.
func MatchingProfiles(entry Entry, profiles []Profile) []Profile {
	var matched []Profile
	for _, p := range profiles {
		if Matches(entry, p) {
			matched = append(matched, p)
		}
	}
	return matched
}
