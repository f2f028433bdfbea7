package slug

import (
	"errors"
	"testing"
)

func TestMake(t *testing.T) {
	testCases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"C++ & Go!", "c-go"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-slugged_title", "already-slugged-title"},
		{"multiple   spaces\tand\nnewlines", "multiple-spaces-and-newlines"},
		{"Crème brûlée", "creme-brulee"},
		{"Straße in Łódź", "strasse-in-lodz"},
		{"Ærø Œuvre þing", "aero-oeuvre-thing"},
		{"v1.2.3 (release): notes", "v123-release-notes"},
		{"don't @ me", "dont-me"},
		{"---dashes---", "dashes"},
		{"Ｆｕｌｌｗｉｄｔｈ", "fullwidth"},
		{"100%", "100"},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			got, err := Make(tc.title)
			if err != nil {
				t.Fatalf("Make(%q): %v", tc.title, err)
			}
			if got != tc.want {
				t.Errorf("Make(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestMakeEmpty(t *testing.T) {
	for _, title := range []string{"", "   ", "!!!", "***", "日本語"} {
		if _, err := Make(title); !errors.Is(err, ErrEmptySlug) {
			t.Errorf("Make(%q): expected ErrEmptySlug, got %v", title, err)
		}
	}
}

func TestMakeDeterministic(t *testing.T) {
	a, _ := Make("Same Title")
	b, _ := Make("Same Title")
	if a != b {
		t.Errorf("Expected identical slugs, got %q and %q", a, b)
	}
}
