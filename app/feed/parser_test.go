package feed

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>AI breakthrough</title>
      <link>https://example.com/a1</link>
      <description><![CDATA[<p>A <b>new</b> chip</p>]]></description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link here</title>
      <description>Plain summary</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []Entry{
		{
			Title:     "AI breakthrough",
			Summary:   "A new chip",
			Published: "Mon, 03 Jul 2023 10:00:00 GMT",
			Link:      "https://example.com/a1",
		},
		{
			Title:   "No link here",
			Summary: "Plain summary",
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAtomUsesContentAndUpdated(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <id>urn:uuid:feed</id>
  <updated>2023-07-03T12:00:00Z</updated>
  <entry>
    <title>Atom entry</title>
    <id>urn:uuid:entry-1</id>
    <link href="https://example.com/atom-1"/>
    <updated>2023-07-03T11:00:00Z</updated>
    <content type="html">&lt;div&gt;Bitcoin rally continues&lt;/div&gt;</content>
  </entry>
</feed>`

	entries, err := NewParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Link != "https://example.com/atom-1" {
		t.Errorf("Expected link 'https://example.com/atom-1', got '%s'", entries[0].Link)
	}
	if entries[0].Summary != "Bitcoin rally continues" {
		t.Errorf("Expected summary 'Bitcoin rally continues', got '%s'", entries[0].Summary)
	}
	if entries[0].Published != "2023-07-03T11:00:00Z" {
		t.Errorf("Expected published fallback to updated date, got '%s'", entries[0].Published)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	_, err := NewParser().Run([]byte("this is not a feed"))
	if err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
