package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPostID(t *testing.T) {
	t.Run("PostID type operations", func(t *testing.T) {
		var pid PostID = "test-post-456"

		if string(pid) != "test-post-456" {
			t.Errorf("Expected string conversion 'test-post-456', got %s", string(pid))
		}

		var pid2 PostID = "test-post-456"
		var pid3 PostID = "different-post"

		if pid != pid2 {
			t.Error("Expected equal PostIDs to be equal")
		}

		if pid == pid3 {
			t.Error("Expected different PostIDs to be different")
		}
	})
}

func TestPostSummary(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	post := &Post{
		ID:          "post-1",
		Title:       "Hello World",
		Slug:        "hello-world",
		Markdown:    "# Hello",
		ContentHash: "abc",
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Hour),
		Owner:       "user-1",
	}

	s := post.Summary()
	if s.ID != post.ID || s.Title != post.Title || s.Slug != post.Slug {
		t.Errorf("Summary mismatch: %+v", s)
	}
	if !s.CreatedAt.Equal(now) || !s.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Summary timestamps mismatch: %+v", s)
	}
}

func TestPostJSON(t *testing.T) {
	post := &Post{
		ID:          "post-1",
		Title:       "Hello World",
		Slug:        "hello-world",
		Markdown:    "![x](https://cdn/abc.png)",
		ContentHash: "secret-hash",
	}

	data, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("Failed to marshal post: %v", err)
	}

	out := string(data)
	for _, want := range []string{`"markdownContent":"![x](https://cdn/abc.png)"`, `"slug":"hello-world"`, `"createdAt"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected JSON to contain %s, got %s", want, out)
		}
	}
	if strings.Contains(out, "secret-hash") {
		t.Errorf("Content hash must not be serialized, got %s", out)
	}
	if strings.Contains(out, "owner") {
		t.Errorf("Empty owner should be omitted, got %s", out)
	}
}

func TestUserJSON(t *testing.T) {
	u := User{ID: "u1", GoogleID: "google-sub", Name: "Ada", Email: "ada@example.com"}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Failed to marshal user: %v", err)
	}
	if strings.Contains(string(data), "google-sub") {
		t.Errorf("Google subject must not be serialized, got %s", data)
	}
}
