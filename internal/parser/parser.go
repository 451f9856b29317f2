// Package parser turns Markdown files with YAML frontmatter into note drafts.
package parser

import (
	"bytes"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/notehub/internal/models"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Title       string
	Tag         models.Tag
	Body        string
}

// Parse extracts frontmatter, title, tag, and body from raw Markdown bytes.
// Malformed frontmatter is treated as body text, so Parse cannot fail.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(data)
	title := frontmatterTitle(fm)
	if title == "" {
		// A leading H1 becomes the title and leaves the body.
		if h, rest, ok := leadingHeading(body); ok {
			title, body = h, rest
		} else if h, ok := firstHeading(body); ok {
			title = h
		}
	}
	return &Result{
		Frontmatter: fm,
		Title:       title,
		Tag:         deriveTag(fm),
		Body:        strings.TrimSpace(body),
	}
}

// Draft converts a parse result into a note draft. name is the file name the
// content came from; its stem is the title of last resort. Files without a
// known tag get fallback.
func (r *Result) Draft(name string, fallback models.Tag) models.NoteDraft {
	title := r.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	tag := r.Tag
	if tag == "" {
		tag = fallback
	}
	return models.NoteDraft{Title: title, Content: r.Body, Tag: tag}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; everything is body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

func frontmatterTitle(fm map[string]any) string {
	s, _ := fm["title"].(string)
	return strings.TrimSpace(s)
}

// deriveTag matches frontmatter "tag", then the first entry of "tags",
// case-insensitively against the known tags.
func deriveTag(fm map[string]any) models.Tag {
	var candidates []string
	if s, ok := fm["tag"].(string); ok {
		candidates = append(candidates, s)
	}
	if list, ok := fm["tags"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}
	for _, c := range candidates {
		for _, known := range models.Tags {
			if strings.EqualFold(strings.TrimSpace(c), string(known)) {
				return known
			}
		}
	}
	return ""
}

func firstHeading(body string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:]), true
		}
	}
	return "", false
}

// leadingHeading returns the H1 on the first non-blank line and the body
// after it.
func leadingHeading(body string) (string, string, bool) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:]), strings.Join(lines[i+1:], "\n"), true
		}
		break
	}
	return "", body, false
}
