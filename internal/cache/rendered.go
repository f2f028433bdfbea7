package cache

// RenderedContent is markdown rendered to HTML plus renderer metadata.
type RenderedContent struct {
	HTML  []byte
	Extra any
}

var renderedMarkdownCache = NewCache[string, *RenderedContent]()

func renderedKey(contentHash, engine, syntaxTheme string) string {
	return contentHash + ":" + engine + ":" + syntaxTheme
}

func GetRenderedMarkdown(contentHash, engine, syntaxTheme string) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(renderedKey(contentHash, engine, syntaxTheme))
}

func SetRenderedMarkdown(contentHash, engine, syntaxTheme string, html []byte, extra any) {
	renderedMarkdownCache.Set(renderedKey(contentHash, engine, syntaxTheme), &RenderedContent{
		HTML:  html,
		Extra: extra,
	})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}
