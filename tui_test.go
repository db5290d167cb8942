package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	for _, l := range lines {
		if utf8.RuneCountInString(l) > 15 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if got := strings.Join(lines, " "); got != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("wrap lost text: %q", got)
	}
}

func TestWrapTextMultibyteNoSpaces(t *testing.T) {
	text := strings.Repeat("日本語の文字起こし", 4)
	lines := wrapText(text, 10)

	var rejoined string
	for _, l := range lines {
		if !utf8.ValidString(l) {
			t.Fatalf("line %q split inside a rune", l)
		}
		if n := utf8.RuneCountInString(l); n > 10 {
			t.Errorf("line %q is %d runes, want <= 10", l, n)
		}
		rejoined += l
	}
	if rejoined != text {
		t.Error("wrap dropped or corrupted characters")
	}
}

func TestWrapTextAccentedTranscript(t *testing.T) {
	text := "el murciélago comía feliz cardillo y kiwi"
	lines := wrapText(text, 12)
	for _, l := range lines {
		if !utf8.ValidString(l) {
			t.Fatalf("line %q split inside a rune", l)
		}
	}
	if got := strings.Join(lines, " "); got != text {
		t.Errorf("wrap lost text: %q", got)
	}
}

func TestWrapTextEdgeCases(t *testing.T) {
	if got := wrapText("", 10); len(got) != 1 || got[0] != "" {
		t.Errorf("empty input: %q", got)
	}
	if got := wrapText("abc", 0); len(got) == 0 {
		t.Error("zero width should still produce output")
	}
	if got := wrapText("short", 80); len(got) != 1 || got[0] != "short" {
		t.Errorf("no-wrap case: %q", got)
	}
}
