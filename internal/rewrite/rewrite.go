// Package rewrite points markdown image references at uploaded objects.
package rewrite

import (
	"regexp"
	"sort"
	"strings"
)

// Images replaces every image reference whose path ends in a key of urls
// with the mapped URL. Alt text is kept; unmatched references are left as is.
func Images(body string, urls map[string]string) string {
	names := make([]string, 0, len(urls))
	for name := range urls {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		url := urls[name]
		re := imagePattern(name)
		body = re.ReplaceAllStringFunc(body, func(match string) string {
			alt := re.FindStringSubmatch(match)[1]
			return "![" + alt + "](" + url + ")"
		})
	}
	return body
}

// imagePattern matches ![alt](path) where the last segment of path is name.
func imagePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`!\[([^\]]*)\]\(\s*(?:[^()\s]*[/\\])?` + regexp.QuoteMeta(name) + `\s*\)`)
}

var anyImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^()\s]+)\s*\)`)

// Unresolved lists image paths in body that still point at local files.
func Unresolved(body string) []string {
	var paths []string
	for _, m := range anyImage.FindAllStringSubmatch(body, -1) {
		if !isRemote(m[1]) {
			paths = append(paths, m[1])
		}
	}
	return paths
}

func isRemote(path string) bool {
	lower := strings.ToLower(path)
	for _, prefix := range []string{"http://", "https://", "//", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
