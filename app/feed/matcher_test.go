package feed

import (
	"testing"
)

func TestMatchesIsCaseInsensitiveSubstring(t *testing.T) {
	profile := NewProfile("d1", []string{"Bitcoin"}, FormatMarkdown)
	entry := Entry{Title: "Markets", Summary: "A sudden bitcoin rally surprised traders"}

	if !Matches(entry, profile) {
		t.Error("Expected keyword 'Bitcoin' to match summary containing 'bitcoin'")
	}
}

func TestMatchesTitle(t *testing.T) {
	profile := NewProfile("d1", []string{"science"}, FormatMarkdown)
	entry := Entry{Title: "SCIENCE weekly", Summary: "nothing relevant"}

	if !Matches(entry, profile) {
		t.Error("Expected keyword to match title")
	}
}

func TestMatchesAccentedKeyword(t *testing.T) {
	profile := NewProfile("d2", []string{"économie"}, FormatMarkdown)
	entry := Entry{Title: "L'ÉCONOMIE mondiale ralentit"}

	if !Matches(entry, profile) {
		t.Error("Expected accented keyword to match regardless of case")
	}
}

func TestMatchesNoKeywordFound(t *testing.T) {
	profile := NewProfile("d1", []string{"technologie"}, FormatMarkdown)
	entry := Entry{Title: "AI breakthrough", Summary: "new chip"}

	if Matches(entry, profile) {
		t.Error("Expected no match")
	}
}

func TestMatchesIgnoresBlankKeywords(t *testing.T) {
	profile := NewProfile("d1", []string{"", "   "}, FormatMarkdown)
	entry := Entry{Title: "Anything at all"}

	if Matches(entry, profile) {
		t.Error("Blank keywords must never match")
	}
	if len(profile.Keywords) != 0 {
		t.Errorf("Expected blank keywords to be dropped, got %v", profile.Keywords)
	}
}

func TestMatchingProfilesFanOut(t *testing.T) {
	profiles := []Profile{
		NewProfile("d1", []string{"chip"}, FormatMarkdown),
		NewProfile("d2", []string{"politique"}, FormatMarkdown),
		NewProfile("d3", []string{"AI"}, FormatPlain),
	}
	entry := Entry{Title: "AI breakthrough", Summary: "new chip"}

	matched := MatchingProfiles(entry, profiles)

	if len(matched) != 2 {
		t.Fatalf("Expected 2 matching profiles, got %d", len(matched))
	}
	if matched[0].DestinationID != "d1" || matched[1].DestinationID != "d3" {
		t.Errorf("Expected destinations d1 and d3 in order, got %s and %s", matched[0].DestinationID, matched[1].DestinationID)
	}
}
