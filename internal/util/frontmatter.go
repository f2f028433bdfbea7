package util

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the metadata block of a markdown document and the text that
// follows it.
type FrontMatter struct {
	Metadata map[string]any
	Body     string
}

// Title returns the trimmed title, or "" when it is missing or not a scalar.
func (fm FrontMatter) Title() string {
	return scalar(fm.Metadata["title"])
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

var formats = map[string]*frontmatter.Format{
	"---": frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	"+++": frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	// mmark title block
	"%%%": frontmatter.NewFormat("%%%", "%%%", toml.Unmarshal),
	";;;": frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
	"{": &frontmatter.Format{
		Start:           "{",
		End:             "}",
		Unmarshal:       json.Unmarshal,
		UnmarshalDelims: true,
		RequiresNewLine: true,
	},
}

var closers = map[string]string{
	"---": "---",
	"+++": "+++",
	"%%%": "%%%",
	";;;": ";;;",
	"{":   "}",
}

// ParseFrontMatter splits text into its metadata block and body. Text without
// a recognised opening delimiter yields empty metadata and the input as body.
func ParseFrontMatter(text string) (FrontMatter, error) {
	normalized := strings.TrimPrefix(text, "\ufeff")
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")

	trimmed := strings.TrimLeft(normalized, " \t\n")
	opener, rest, _ := strings.Cut(trimmed, "\n")
	opener = strings.TrimSpace(opener)

	format, ok := formats[opener]
	if !ok {
		return FrontMatter{Metadata: map[string]any{}, Body: text}, nil
	}
	if !hasCloser(rest, closers[opener]) {
		return FrontMatter{}, fmt.Errorf("front matter opened with %q is never closed", opener)
	}

	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(opener+"\n"+rest), &meta, format)
	if err != nil {
		return FrontMatter{}, fmt.Errorf("failed to decode front matter: %w", err)
	}

	return FrontMatter{
		Metadata: meta,
		Body:     strings.TrimLeft(string(body), "\n"),
	}, nil
}

func hasCloser(rest, closer string) bool {
	s := bufio.NewScanner(strings.NewReader(rest))
	s.Buffer(make([]byte, 0, 64*1024), len(rest)+1)
	for s.Scan() {
		if strings.TrimSpace(s.Text()) == closer {
			return true
		}
	}
	return false
}
