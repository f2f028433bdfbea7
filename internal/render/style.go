package render

import (
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/folio/internal/cache"
)

func Formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// Style returns the chroma style registered under name, or the fallback.
func Style(name string) *chroma.Style {
	return styles.Get(name)
}

// HasTheme reports whether name is a registered chroma style.
func HasTheme(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

func Themes() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

// SyntaxCSS returns the stylesheet for the chroma classes emitted by
// HighlightCode. Unknown themes get the fallback style.
func SyntaxCSS(theme string) string {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	var buf strings.Builder
	style := Style(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text colour when the theme leaves it unset
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := Formatter().WriteCSS(&buf, style); err != nil {
		renderLogger.Error().Err(err).Str("theme", theme).Msg("Failed to write syntax CSS")
	}

	css := buf.String()
	cache.SetSyntaxCSS(theme, css)
	return css
}
