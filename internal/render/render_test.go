package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
)

func setupTest(t *testing.T, engineName string) {
	t.Helper()
	cache.ClearRenderedMarkdownCache()
	if err := SetEngine(engineName); err != nil {
		t.Fatalf("SetEngine: %v", err)
	}
	t.Cleanup(func() { SetEngine(config.RendererMmark) })
}

func TestSetEngine(t *testing.T) {
	setupTest(t, config.RendererClassic)

	if Engine() != config.RendererClassic {
		t.Errorf("Expected classic engine, got %q", Engine())
	}
	if err := SetEngine("goldmark"); err == nil {
		t.Error("Expected error for unknown engine")
	}
	if Engine() != config.RendererClassic {
		t.Errorf("Unknown engine must not replace the current one, got %q", Engine())
	}
}

func TestMarkdown(t *testing.T) {
	for _, engineName := range []string{config.RendererMmark, config.RendererClassic} {
		t.Run(engineName, func(t *testing.T) {
			setupTest(t, engineName)

			tests := []struct {
				name     string
				markdown string
				contains []string
			}{
				{
					name:     "heading and paragraph",
					markdown: "# Title\n\nSome *text*.",
					contains: []string{"<h1", "Title</h1>", "<em>text</em>"},
				},
				{
					name:     "image",
					markdown: "![a cat](https://cdn.example.com/cat.png)",
					contains: []string{`src="https://cdn.example.com/cat.png"`, `alt="a cat"`},
				},
				{
					name:     "highlighted code block",
					markdown: "```go\nfunc main() {}\n```",
					contains: []string{`<div class="highlight">`, `class="chroma"`, "main"},
				},
				{
					name:     "crlf line endings",
					markdown: "# Title\r\n\r\nBody\r\n",
					contains: []string{"Title</h1>", "Body"},
				},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					out := string(Markdown([]byte(tt.markdown), "github"))
					for _, want := range tt.contains {
						if !strings.Contains(out, want) {
							t.Errorf("Expected output to contain %q, got:\n%s", want, out)
						}
					}
				})
			}
		})
	}
}

func TestHighlightCodeEscapes(t *testing.T) {
	out := HighlightCode(`fmt.Println("<script>")`, "go", "github")
	if strings.Contains(out, "<script>") {
		t.Errorf("Expected code to stay escaped, got %s", out)
	}
}

func TestHighlightCodeCallout(t *testing.T) {
	out := HighlightCode("x := 1 // <<1>>", "go", "github")
	if !strings.Contains(out, `<span class="callout">1</span>`) {
		t.Errorf("Expected callout span, got %s", out)
	}
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	out := HighlightCode("plain text", "no-such-language", "github")
	if !strings.Contains(out, "plain text") {
		t.Errorf("Expected fallback lexer output, got %s", out)
	}
}

func TestMarkdownCached(t *testing.T) {
	setupTest(t, config.RendererMmark)

	md := []byte("# Cached\n\nContent with `code`")

	first := MarkdownCached(md, "hash-1", "github")
	if len(first) == 0 {
		t.Fatal("Expected rendered HTML")
	}

	cached, found := cache.GetRenderedMarkdown("hash-1", config.RendererMmark, "github")
	if !found {
		t.Fatal("Expected rendered content to be cached")
	}
	if !bytes.Equal(cached.HTML, first) {
		t.Error("Cached HTML should match the rendered output")
	}

	// A hit returns the cached entry even if the input changed
	second := MarkdownCached([]byte("# Different"), "hash-1", "github")
	if !bytes.Equal(first, second) {
		t.Error("Cache hit should return identical HTML")
	}
}

func TestMarkdownCachedEmptyHash(t *testing.T) {
	setupTest(t, config.RendererMmark)

	out := MarkdownCached([]byte("# No hash"), "", "github")
	if len(out) == 0 {
		t.Error("Expected rendered HTML")
	}
	if _, found := cache.GetRenderedMarkdown("", config.RendererMmark, "github"); found {
		t.Error("Empty hashes must not be cached")
	}
}

func TestCacheKeyUniqueness(t *testing.T) {
	setupTest(t, config.RendererMmark)

	md := []byte("```go\nfunc main() {}\n```")
	MarkdownCached(md, "hash-1", "github")
	MarkdownCached(md, "hash-1", "monokai")

	SetEngine(config.RendererClassic)
	MarkdownCached(md, "hash-1", "github")

	keys := []struct{ engine, theme string }{
		{config.RendererMmark, "github"},
		{config.RendererMmark, "monokai"},
		{config.RendererClassic, "github"},
	}
	seen := make(map[*cache.RenderedContent]bool)
	for _, k := range keys {
		cached, found := cache.GetRenderedMarkdown("hash-1", k.engine, k.theme)
		if !found {
			t.Errorf("Expected cache entry for %s/%s", k.engine, k.theme)
			continue
		}
		if seen[cached] {
			t.Errorf("Expected a separate entry for %s/%s", k.engine, k.theme)
		}
		seen[cached] = true
	}
}

func TestCacheConcurrency(t *testing.T) {
	setupTest(t, config.RendererMmark)

	const goroutines = 50
	md := []byte("# Concurrent Test\n\nContent with `code`")

	var wg sync.WaitGroup
	results := make([][]byte, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MarkdownCached(md, "concurrent-hash", "github")
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		if !bytes.Equal(result, results[0]) {
			t.Errorf("Result %d differs from first result", i)
		}
	}
}

func TestSyntaxCSS(t *testing.T) {
	for _, theme := range []string{"github", "monokai", "gruvbox", "nonexistent-theme-12345"} {
		t.Run(theme, func(t *testing.T) {
			css := SyntaxCSS(theme)
			if !strings.Contains(css, ".chroma") {
				t.Errorf("Expected chroma CSS, got %q", css)
			}
			if cached, ok := cache.GetSyntaxCSS(theme); !ok || cached != css {
				t.Error("Expected CSS to be cached")
			}
		})
	}
}

func TestThemes(t *testing.T) {
	themes := Themes()
	if len(themes) == 0 {
		t.Fatal("Expected at least one theme")
	}
	for i := 1; i < len(themes); i++ {
		if themes[i-1] > themes[i] {
			t.Fatalf("Expected sorted themes, got %q before %q", themes[i-1], themes[i])
		}
	}
	if !HasTheme("monokai") {
		t.Error("Expected monokai to be registered")
	}
	if HasTheme("nonexistent-theme-12345") {
		t.Error("Expected unknown theme to be reported missing")
	}
}

func BenchmarkMarkdownCached(b *testing.B) {
	cache.ClearRenderedMarkdownCache()
	md := []byte("# Bench\n\n```go\nfunc main() {}\n```\n")

	b.Run("CacheHit", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			MarkdownCached(md, "bench-hash", "github")
		}
	})

	b.Run("CacheMiss", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			MarkdownCached(md, fmt.Sprintf("hash-%d", i), "github")
		}
	})
}
