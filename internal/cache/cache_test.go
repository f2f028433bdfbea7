package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("hello-world", "post-1")
		got, exists := cache.Get("hello-world")
		if !exists || got != "post-1" {
			t.Errorf("Expected post-1, got %q (exists=%v)", got, exists)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, exists := cache.Get("missing"); exists {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		cache.Set("hello-world", "post-2")
		if got, _ := cache.Get("hello-world"); got != "post-2" {
			t.Errorf("Expected post-2, got %q", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Delete("hello-world")
		if _, exists := cache.Get("hello-world"); exists {
			t.Error("Expected key to be deleted")
		}
		cache.Delete("never-set")
	})
}

func TestCache_DeleteFunc(t *testing.T) {
	cache := NewCache[string, int]()
	for i := 0; i < 10; i++ {
		cache.Set(fmt.Sprintf("k%d", i), i)
	}

	cache.DeleteFunc(func(_ string, v int) bool { return v%2 == 0 })

	if cache.Len() != 5 {
		t.Errorf("Expected 5 entries left, got %d", cache.Len())
	}
	if _, ok := cache.Get("k2"); ok {
		t.Error("Expected even values to be removed")
	}
	if _, ok := cache.Get("k3"); !ok {
		t.Error("Expected odd values to remain")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache[int, string]()
	cache.Set(1, "a")
	cache.Set(2, "b")
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
	cache.Set(3, "c")
	if cache.Len() != 1 {
		t.Error("Cache should be usable after Clear")
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, int]()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := g*1000 + i
				cache.Set(key, i)
				cache.Get(key)
				if i%10 == 0 {
					cache.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if cache.Len() != 8*180 {
		t.Errorf("Expected %d entries, got %d", 8*180, cache.Len())
	}
}

func TestRenderedMarkdownCache(t *testing.T) {
	ClearRenderedMarkdownCache()
	defer ClearRenderedMarkdownCache()

	SetRenderedMarkdown("hash1", "mmark", "gruvbox", []byte("<p>dark</p>"), "extra")
	SetRenderedMarkdown("hash1", "mmark", "github", []byte("<p>light</p>"), nil)

	got, ok := GetRenderedMarkdown("hash1", "mmark", "gruvbox")
	if !ok || !bytes.Equal(got.HTML, []byte("<p>dark</p>")) || got.Extra != "extra" {
		t.Errorf("Unexpected cached content %+v", got)
	}
	got, ok = GetRenderedMarkdown("hash1", "mmark", "github")
	if !ok || !bytes.Equal(got.HTML, []byte("<p>light</p>")) {
		t.Errorf("Themes must be cached separately, got %+v", got)
	}
	if _, ok := GetRenderedMarkdown("hash1", "classic", "gruvbox"); ok {
		t.Error("Engines must be cached separately")
	}

	ClearRenderedMarkdownCache()
	if _, ok := GetRenderedMarkdown("hash1", "mmark", "gruvbox"); ok {
		t.Error("Expected cache to be cleared")
	}
}

func TestSyntaxCSSCache(t *testing.T) {
	SetSyntaxCSS("monokai", ".chroma{}")
	if css, ok := GetSyntaxCSS("monokai"); !ok || css != ".chroma{}" {
		t.Errorf("Unexpected css %q", css)
	}
	if _, ok := GetSyntaxCSS("unknown-theme"); ok {
		t.Error("Expected miss for unknown theme")
	}
}

func BenchmarkCache_Get(b *testing.B) {
	cache := NewCache[string, string]()
	cache.Set("key", "value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get("key")
	}
}
