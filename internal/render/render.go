// Package render turns post markdown into HTML with highlighted code blocks.
package render

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

var (
	engineMu sync.RWMutex
	engine   = config.RendererMmark
)

// SetEngine selects the markdown engine, config.RendererMmark or
// config.RendererClassic.
func SetEngine(name string) error {
	switch name {
	case config.RendererMmark, config.RendererClassic:
	default:
		return fmt.Errorf("unknown render engine %q", name)
	}

	engineMu.Lock()
	defer engineMu.Unlock()
	engine = name
	return nil
}

func Engine() string {
	engineMu.RLock()
	defer engineMu.RUnlock()
	return engine
}

func HighlightCode(code, language, syntaxTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var buf strings.Builder
	if err := Formatter().Format(&buf, Style(syntaxTheme), iterator); err != nil {
		return html.EscapeString(code)
	}

	return config.RegexCallout.ReplaceAllString(buf.String(), `<span class="callout">$1</span>`)
}

// Markdown renders md with the configured engine.
func Markdown(md []byte, syntaxTheme string) []byte {
	out, _ := render(md, Engine(), syntaxTheme)
	return out
}

func render(md []byte, engineName, syntaxTheme string) ([]byte, any) {
	switch engineName {
	case config.RendererClassic:
		return Classic(md, syntaxTheme), nil
	default:
		return Mmark(md, syntaxTheme)
	}
}

// Serializes misses so concurrent readers of one post render it once
var renderCacheMutex sync.Mutex

// MarkdownCached is Markdown behind the rendered-content cache, keyed by
// content hash, engine and syntax theme.
func MarkdownCached(md []byte, contentHash, syntaxTheme string) []byte {
	engineName := Engine()
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		out, _ := render(md, engineName, syntaxTheme)
		return out
	}

	if cached, found := cache.GetRenderedMarkdown(contentHash, engineName, syntaxTheme); found {
		renderLogger.Debug().Str("content_hash", contentHash).Str("syntax_theme", syntaxTheme).Msg("Cache hit for rendered markdown")
		return cached.HTML
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	// Another goroutine may have filled it while we waited
	if cached, found := cache.GetRenderedMarkdown(contentHash, engineName, syntaxTheme); found {
		return cached.HTML
	}

	renderLogger.Debug().Str("content_hash", contentHash).Str("syntax_theme", syntaxTheme).Msg("Cache miss for rendered markdown")
	out, extra := render(md, engineName, syntaxTheme)
	cache.SetRenderedMarkdown(contentHash, engineName, syntaxTheme, out, extra)

	return out
}

// WarmCache renders md in the background so the first reader hits the cache.
func WarmCache(md []byte, contentHash, syntaxTheme string) {
	go func() {
		MarkdownCached(md, contentHash, syntaxTheme)
		renderLogger.Debug().Str("content_hash", contentHash).Msg("Cache warming completed")
	}()
}

func codeBlockHook(syntaxTheme string) func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		code, ok := node.(*ast.CodeBlock)
		if !ok || !entering {
			return ast.GoToNext, false
		}
		var language string
		if info := code.Info; info != nil {
			language = string(info)
		}
		fmt.Fprintf(w, `<div class="highlight">%s</div>`, HighlightCode(string(code.Literal), language, syntaxTheme))
		return ast.GoToNext, true
	}
}

func Classic(md []byte, syntaxTheme string) []byte {
	highlight := codeBlockHook(syntaxTheme)
	opts := md_html.RendererOptions{
		Flags:    md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := highlight(w, node, entering); handled {
				return status, true
			}

			if callout, ok := node.(*ast.Callout); ok && entering {
				fmt.Fprintf(w, `<span class="callout">%s</span>`, callout.ID)
				return ast.GoToNext, true
			}

			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists | parser.MathJax |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.Attributes |
			parser.NonBlockingSpace,
	).Parse(markdown.NormalizeNewlines(md))

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// Mmark renders md with the mmark dialect. The title block, when the
// document has one, is returned alongside the HTML.
func Mmark(md []byte, syntaxTheme string) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)

	var info *mast.TitleData
	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		// includes would read from the server's filesystem
		ReadIncludeFn: func(from, path string, address []byte) []byte { return nil },
		Flags:         parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	language := "en"
	if info != nil && info.Language != "" {
		language = info.Language
	}
	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	highlight := codeBlockHook(syntaxTheme)
	opts := md_html.RendererOptions{
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := highlight(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts)), info
}
