// Package tools implements the built-in tools the executor registers:
// file read/write/edit, search, shell, web fetch, sub-agent spawn, and
// the small utility tools (todos, think, skill, slash command).
package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// regexDelims is the fixed delimiter set edit strategy 3 tokenizes on,
// in addition to whitespace.
const regexDelims = "():[]{}><="

// TryExactReplace implements edit strategy 1: a literal replace. Returns
// ok=false when old does not occur in content at all.
func TryExactReplace(content, old, new string, all bool) (string, int, bool) {
	count := strings.Count(content, old)
	if count == 0 {
		return "", 0, false
	}
	if all {
		return strings.ReplaceAll(content, old, new), count, true
	}
	return strings.Replace(content, old, new, 1), 1, true
}

// TryFlexibleReplace implements edit strategy 2: both old and content are
// split into lines, each line trimmed for comparison, and a matching
// window of lines is replaced with new re-indented to the leading
// whitespace of the window's first matched line.
func TryFlexibleReplace(content, old, new string, all bool) (string, int, bool) {
	oldLines := strings.Split(old, "\n")
	trimmedOld := make([]string, len(oldLines))
	for i, l := range oldLines {
		trimmedOld[i] = strings.TrimSpace(l)
	}
	contentLines := strings.Split(content, "\n")
	newLines := strings.Split(new, "\n")

	var result []string
	count := 0
	i := 0
	for i < len(contentLines) {
		if (all || count == 0) && matchesWindow(contentLines, i, trimmedOld) {
			indent := leadingWhitespace(contentLines[i])
			for _, nl := range newLines {
				result = append(result, indent+nl)
			}
			i += len(trimmedOld)
			count++
			continue
		}
		result = append(result, contentLines[i])
		i++
	}
	if count == 0 {
		return "", 0, false
	}
	return strings.Join(result, "\n"), count, true
}

func matchesWindow(lines []string, start int, trimmedOld []string) bool {
	if start+len(trimmedOld) > len(lines) {
		return false
	}
	for j, want := range trimmedOld {
		if strings.TrimSpace(lines[start+j]) != want {
			return false
		}
	}
	return true
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

// TryRegexReplace implements edit strategy 3: old is tokenized on the
// fixed delimiter set and on whitespace, rebuilt as a regex joined by
// \s*, and the first match's leading whitespace is captured and used to
// re-indent new. The replacement text is spliced in literally; regexp
// group expansion ($1, $HOME, ...) never applies.
func TryRegexReplace(content, old, new string) (string, int, bool) {
	tokens := tokenizeForRegex(old)
	if len(tokens) == 0 {
		return "", 0, false
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = regexp.QuoteMeta(t)
	}
	pattern := `(\s*)` + strings.Join(parts, `\s*`)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", 0, false
	}
	loc := re.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", 0, false
	}
	indent := content[loc[2]:loc[3]]
	replacement := indentLines(new, indent)
	result := content[:loc[0]] + replacement + content[loc[1]:]
	return result, 1, true
}

func tokenizeForRegex(old string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range old {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case strings.ContainsRune(regexDelims, r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// indentLines prepends indent to every line of text. The first line
// already sits at the captured match position, but re-indenting it too
// keeps flexible and regex strategies consistent when new spans
// multiple lines.
func indentLines(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

// PreCorrectEscaping is the escaping correction, made without a model
// call: when old is not found verbatim, try the de-escaped form (models sometimes
// double-escape control characters when emitting JSON tool arguments);
// new is always de-escaped independent of whether old needed help.
func PreCorrectEscaping(old, new, content string) (string, string) {
	correctedOld := old
	if !strings.Contains(content, old) {
		if unescaped := UnescapeStringForLLMBug(old); unescaped != old && strings.Contains(content, unescaped) {
			correctedOld = unescaped
		}
	}
	return correctedOld, UnescapeStringForLLMBug(new)
}

// UnescapeStringForLLMBug undoes the common model bug of emitting
// doubled backslash escapes (e.g. "\\\\n" for a newline) on top of the
// normal single-escape forms.
func UnescapeStringForLLMBug(s string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '\\' {
			out.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			out.WriteByte('\\')
			i++
			continue
		}
		next := s[i+1]
		if esc, ok := escapeChar(next); ok {
			out.WriteByte(esc)
			i += 2
			continue
		}
		if next == '\\' && i+2 < len(s) {
			if esc, ok := escapeChar(s[i+2]); ok {
				out.WriteByte(esc)
				i += 3
				continue
			}
			out.WriteByte('\\')
			i += 2
			continue
		}
		out.WriteByte('\\')
		i++
	}
	return out.String()
}

func escapeChar(b byte) (byte, bool) {
	switch b {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	default:
		return 0, false
	}
}

// TrimPairIfPossible tries old/new with surrounding whitespace trimmed,
// but only reports a change when trimming altered something and the
// trimmed old actually occurs in content.
func TrimPairIfPossible(old, new, content string) (string, string, bool) {
	trimmedOld := strings.TrimSpace(old)
	trimmedNew := strings.TrimSpace(new)
	if trimmedOld == old && trimmedNew == new {
		return "", "", false
	}
	if !strings.Contains(content, trimmedOld) {
		return "", "", false
	}
	return trimmedOld, trimmedNew, true
}

// FindClosestMatch builds a human-readable hint for when every strategy
// missed, by looking for old's first line somewhere in content.
func FindClosestMatch(content, old string) string {
	oldLines := strings.Split(old, "\n")
	firstLine := strings.TrimSpace(oldLines[0])
	if firstLine == "" {
		return "old_string not found anywhere in file"
	}
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, firstLine) || strings.Contains(firstLine, trimmed) {
			return fmt.Sprintf("old_string not matched exactly, but a partial match exists near line %d: %q", i+1, trimmed)
		}
	}
	return "old_string not found anywhere in file"
}

// DiffStats renders a short "(+N/-M lines)" summary of a line-level diff
// between old and new, or "" when the line sets are identical.
func DiffStats(old, new string) string {
	oldLines := splitLinesTrimTrailingEmpty(old)
	newLines := splitLinesTrimTrailingEmpty(new)
	added, removed := lineDiffCounts(oldLines, newLines)
	if added == 0 && removed == 0 {
		return ""
	}
	return fmt.Sprintf(" (+%d/-%d lines)", added, removed)
}

func splitLinesTrimTrailingEmpty(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lineDiffCounts computes added/removed line counts from an O(n*m)
// longest-common-subsequence table. Inputs here are individual edit
// hunks, not whole files, so the quadratic table is not a concern.
func lineDiffCounts(a, b []string) (added, removed int) {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case a[i-1] == b[j-1]:
				lcs[i][j] = lcs[i-1][j-1] + 1
			case lcs[i-1][j] >= lcs[i][j-1]:
				lcs[i][j] = lcs[i-1][j]
			default:
				lcs[i][j] = lcs[i][j-1]
			}
		}
	}
	common := lcs[n][m]
	return m - common, n - common
}

// ApplyEditStrategies runs the three matchers in order, stopping at the
// first success, and enforces the trailing-newline policy: the result
// matches content's trailing-newline presence exactly.
func ApplyEditStrategies(content, old, new string, replaceAll bool) (result string, count int, strategy string, ok bool) {
	if result, count, ok = TryExactReplace(content, old, new, replaceAll); ok {
		strategy = "exact"
	} else if result, count, ok = TryFlexibleReplace(content, old, new, replaceAll); ok {
		strategy = "flexible"
	} else if result, count, ok = TryRegexReplace(content, old, new); ok {
		strategy = "regex"
	} else {
		return "", 0, "", false
	}
	return enforceTrailingNewline(content, result), count, strategy, true
}

// ApplyEditWithAlgorithmicFallbacks runs ApplyEditStrategies, and on a
// total miss retries once with PreCorrectEscaping's output and once
// more with TrimPairIfPossible's output, in that order, stopping at
// the first success. These are the purely algorithmic fallbacks; no
// model call is involved at this layer.
func ApplyEditWithAlgorithmicFallbacks(content, old, new string, replaceAll bool) (result string, count int, strategy string, ok bool) {
	if result, count, strategy, ok = ApplyEditStrategies(content, old, new, replaceAll); ok {
		return
	}
	if correctedOld, correctedNew := PreCorrectEscaping(old, new, content); correctedOld != old || correctedNew != new {
		if result, count, strategy, ok = ApplyEditStrategies(content, correctedOld, correctedNew, replaceAll); ok {
			return
		}
	}
	if trimmedOld, trimmedNew, trimOk := TrimPairIfPossible(old, new, content); trimOk {
		if result, count, strategy, ok = ApplyEditStrategies(content, trimmedOld, trimmedNew, replaceAll); ok {
			return
		}
	}
	return "", 0, "", false
}

func enforceTrailingNewline(original, result string) string {
	hadNewline := strings.HasSuffix(original, "\n")
	hasNewline := strings.HasSuffix(result, "\n")
	switch {
	case hadNewline && !hasNewline:
		return result + "\n"
	case !hadNewline && hasNewline:
		return strings.TrimSuffix(result, "\n")
	default:
		return result
	}
}
