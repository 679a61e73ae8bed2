package service

import (
	"regexp"
	"strings"
)

// Plain-text consumers (SMS-style clients, TTS) cannot render markdown, so
// the assistant's answer is also shipped with formatting stripped.
var (
	mdCodeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n?(.*?)```")
	mdInlineRe    = regexp.MustCompile("`([^`]*)`")
	mdHeadingRe   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBoldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	mdItalicRe    = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	mdLinkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdListRe      = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumListRe   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	mdBlockquote  = regexp.MustCompile(`(?m)^>\s?`)
	mdHRuleRe     = regexp.MustCompile(`(?m)^(\*{3,}|-{3,}|_{3,})\s*$`)
)

// StripMarkdown removes common markdown syntax, keeping the readable text.
func StripMarkdown(s string) string {
	s = mdCodeBlockRe.ReplaceAllString(s, "$1")
	s = mdInlineRe.ReplaceAllString(s, "$1")
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdBoldRe.ReplaceAllString(s, "$1$2")
	s = mdItalicRe.ReplaceAllString(s, "$1$2")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdListRe.ReplaceAllString(s, "")
	s = mdNumListRe.ReplaceAllString(s, "")
	s = mdBlockquote.ReplaceAllString(s, "")
	s = mdHRuleRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
