package shell

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/pattern"
	"mvdan.cc/sh/v3/syntax"
)

func shellReadDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// the entry disappeared while we were listing the directory
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// ExpandPatterns resolves shell glob patterns (including **) relative to base. Patterns that don't
// match anything are dropped. The returned paths are absolute if base is absolute.
func ExpandPatterns(base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		ReadDir:  shellReadDir,
		GlobStar: true,
	}

	prefix := filepath.ToSlash(base)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	for _, item := range patterns {
		item = filepath.ToSlash(item)

		// The base is quoted so that spaces or glob characters in it are taken literally.
		word := &syntax.Word{
			Parts: []syntax.WordPart{
				&syntax.SglQuoted{Value: prefix},
				&syntax.Lit{Value: item},
			},
		}

		matches, err := expand.Fields(&cfg, word)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve pattern %s", item)
		}

		for _, match := range matches {
			// If a pattern didn't match anything, it's returned as a result. Skip those results.
			if match == prefix+item && strings.ContainsAny(item, "*?[") {
				continue
			}

			result = append(result, filepath.FromSlash(match))
		}
	}

	return result, nil
}

// MatchName reports whether name matches the shell pattern pat.
func MatchName(pat, name string) (bool, error) {
	expr, err := pattern.Regexp(pat, 0)
	if err != nil {
		return false, eris.Wrapf(err, "invalid pattern %s", pat)
	}

	rx, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return false, eris.Wrapf(err, "invalid pattern %s", pat)
	}

	return rx.MatchString(name), nil
}
