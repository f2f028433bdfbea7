package config

import "regexp"

const (
	RendererMmark   = "mmark"
	RendererClassic = "classic"
)

var (
	// Matches a "// <<1>>" callout marker after chroma has escaped it.
	RegexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
