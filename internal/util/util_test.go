package util

import (
	"strings"
	"testing"
)

func TestContentHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
	if ContentHashString("abc") != want {
		t.Error("ContentHashString should match ContentHash")
	}
	if ContentHashString("abc") == ContentHashString("abd") {
		t.Error("Different content should hash differently")
	}
}

func TestParseFrontMatter(t *testing.T) {
	testCases := []struct {
		name          string
		markdown      string
		expectError   bool
		expectedTitle string
		expectedBody  string
	}{
		{
			name:          "YAML",
			markdown:      "---\ntitle: Hello World\ntags: [go, zip]\n---\n# Content",
			expectedTitle: "Hello World",
			expectedBody:  "# Content",
		},
		{
			name:          "TOML",
			markdown:      "+++\ntitle = \"Hello TOML\"\n+++\n# Content",
			expectedTitle: "Hello TOML",
			expectedBody:  "# Content",
		},
		{
			name:          "mmark title block",
			markdown:      "%%%\ntitle = \"Hello mmark\"\ndate = 2025-01-01T00:00:00Z\n%%%\n# Content",
			expectedTitle: "Hello mmark",
			expectedBody:  "# Content",
		},
		{
			name:          "JSON",
			markdown:      ";;;\n{\"title\": \"Hello JSON\"}\n;;;\n# Content",
			expectedTitle: "Hello JSON",
			expectedBody:  "# Content",
		},
		{
			name:          "JSON object",
			markdown:      "{\n\"title\": \"Brace JSON\"\n}\n# Content",
			expectedTitle: "Brace JSON",
			expectedBody:  "# Content",
		},
		{
			name:          "Leading blank lines",
			markdown:      "\n\n---\ntitle: \"  Padded  \"\n---\nBody",
			expectedTitle: "Padded",
			expectedBody:  "Body",
		},
		{
			name:          "Windows line endings",
			markdown:      "---\r\ntitle: CRLF\r\n---\r\nBody",
			expectedTitle: "CRLF",
			expectedBody:  "Body",
		},
		{
			name:          "Byte order mark",
			markdown:      "\ufeff---\ntitle: Hello\n---\nBody\n",
			expectedTitle: "Hello",
			expectedBody:  "Body",
		},
		{
			name:          "Numeric title",
			markdown:      "---\ntitle: 2025\n---\nBody",
			expectedTitle: "2025",
			expectedBody:  "Body",
		},
		{
			name:          "List title counts as missing",
			markdown:      "---\ntitle: [a, b]\n---\nBody",
			expectedTitle: "",
			expectedBody:  "Body",
		},
		{
			name:          "No title",
			markdown:      "---\nauthor: someone\n---\nBody",
			expectedTitle: "",
			expectedBody:  "Body",
		},
		{
			name:        "Malformed YAML",
			markdown:    "---\ntitle: [unclosed\n---\nBody",
			expectError: true,
		},
		{
			name:        "Malformed TOML",
			markdown:    "%%%\ntitle = \"Incomplete\n%%%\n# Content",
			expectError: true,
		},
		{
			name:        "Unclosed block",
			markdown:    "---\ntitle: Hello\n# Content",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fm, err := ParseFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none (metadata %v)", fm.Metadata)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}

			if fm.Title() != tc.expectedTitle {
				t.Errorf("Expected title %q, got %q", tc.expectedTitle, fm.Title())
			}
			if strings.TrimSpace(fm.Body) != tc.expectedBody {
				t.Errorf("Expected body %q, got %q", tc.expectedBody, fm.Body)
			}
		})
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	for _, text := range []string{
		"",
		"# Just Content\nNo front matter here.",
		"Intro\n---\ntitle: late\n---\n",
		"# Heading\r\nline\r\n",
		"\ufeff# Heading\n",
	} {
		fm, err := ParseFrontMatter(text)
		if err != nil {
			t.Errorf("ParseFrontMatter(%q): unexpected error %v", text, err)
			continue
		}
		if len(fm.Metadata) != 0 {
			t.Errorf("Expected empty metadata for %q, got %v", text, fm.Metadata)
		}
		if fm.Body != text {
			t.Errorf("Expected body unchanged for %q, got %q", text, fm.Body)
		}
		if fm.Title() != "" {
			t.Errorf("Expected empty title for %q", text)
		}
	}
}
