package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExactReplaceBasic(t *testing.T) {
	result, count, ok := TryExactReplace("hello world", "world", "rust", false)
	assert.True(t, ok)
	assert.Equal(t, "hello rust", result)
	assert.Equal(t, 1, count)
}

func TestExactReplaceAll(t *testing.T) {
	result, count, ok := TryExactReplace("foo bar foo", "foo", "baz", true)
	assert.True(t, ok)
	assert.Equal(t, "baz bar baz", result)
	assert.Equal(t, 2, count)
}

func TestExactNoMatch(t *testing.T) {
	_, _, ok := TryExactReplace("hello", "xyz", "abc", false)
	assert.False(t, ok)
}

func TestFlexibleReplaceBasic(t *testing.T) {
	content := "    let x = 1;\n    let y = 2;\n"
	old := "let x = 1;\nlet y = 2;"
	new := "let x = 10;\nlet y = 20;"
	result, count, ok := TryFlexibleReplace(content, old, new, false)
	assert.True(t, ok)
	assert.Equal(t, 1, count)
	assert.Contains(t, result, "    let x = 10;")
	assert.Contains(t, result, "    let y = 20;")
}

func TestFlexibleReplaceNoMatch(t *testing.T) {
	_, _, ok := TryFlexibleReplace("hello world\n", "nonexistent", "x", false)
	assert.False(t, ok)
}

func TestFlexibleReplaceAllOccurrences(t *testing.T) {
	content := "    foo bar\n    baz\n    foo bar\n    baz\n"
	result, count, ok := TryFlexibleReplace(content, "foo bar\nbaz", "replaced\nline", true)
	assert.True(t, ok)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, countOccurrences(result, "replaced"))
}

func TestRegexReplaceIntraLineWhitespace(t *testing.T) {
	content := "function test(){body}"
	old := "function test ( ) { body }"
	new := "function test(){updated}"
	result, count, ok := TryRegexReplace(content, old, new)
	assert.True(t, ok)
	assert.Equal(t, 1, count)
	assert.Contains(t, result, "updated")
}

func TestRegexReplaceFirstOnly(t *testing.T) {
	content := "func(){}\nfunc(){}\n"
	old := "func ( ) { }"
	new := "updated(){}"
	result, count, ok := TryRegexReplace(content, old, new)
	assert.True(t, ok)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, countOccurrences(result, "func(){}"))
	assert.Contains(t, result, "updated(){}")
}

func TestRegexReplaceNoMatch(t *testing.T) {
	_, _, ok := TryRegexReplace("hello world", "nonexistent_func()", "x")
	assert.False(t, ok)
}

func TestPreCorrectNoChange(t *testing.T) {
	old, new := PreCorrectEscaping("hello", "hi", "hello world")
	assert.Equal(t, "hello", old)
	assert.Equal(t, "hi", new)
}

func TestPreCorrectUnescapeFixesMatch(t *testing.T) {
	content := "line1\nline2"
	old, new := PreCorrectEscaping(`line1\nline2`, `line1\nupdated`, content)
	assert.Equal(t, "line1\nline2", old)
	assert.Equal(t, "line1\nupdated", new)
}

func TestPreCorrectNewStringOverEscaped(t *testing.T) {
	content := "hello world"
	old, new := PreCorrectEscaping("hello", `hi\nthere`, content)
	assert.Equal(t, "hello", old)
	assert.Equal(t, "hi\nthere", new)
}

func TestPreCorrectNoHelp(t *testing.T) {
	old, new := PreCorrectEscaping("notfound", "replacement", "hello world")
	assert.Equal(t, "notfound", old)
	assert.Equal(t, "replacement", new)
}

func TestUnescapeNoEscapes(t *testing.T) {
	assert.Equal(t, "hello world", UnescapeStringForLLMBug("hello world"))
}

func TestUnescapeNewline(t *testing.T) {
	assert.Equal(t, "line1\nline2", UnescapeStringForLLMBug(`line1\nline2`))
}

func TestUnescapeTab(t *testing.T) {
	assert.Equal(t, "col1\tcol2", UnescapeStringForLLMBug(`col1\tcol2`))
}

func TestUnescapeQuotes(t *testing.T) {
	assert.Equal(t, `say "hello"`, UnescapeStringForLLMBug(`say \"hello\"`))
	assert.Equal(t, "it's working", UnescapeStringForLLMBug(`it\'s working`))
}

func TestUnescapeDoubleBackslash(t *testing.T) {
	assert.Equal(t, "path\nname", UnescapeStringForLLMBug(`path\\nname`))
}

func TestUnescapeTrailingBackslash(t *testing.T) {
	assert.Equal(t, `end\`, UnescapeStringForLLMBug(`end\`))
}

func TestUnescapeBackslashNotEscape(t *testing.T) {
	assert.Equal(t, `\a\b\c`, UnescapeStringForLLMBug(`\a\b\c`))
}

func TestTrimPairNoTrimmingNeeded(t *testing.T) {
	_, _, ok := TrimPairIfPossible("hello", "world", "hello there")
	assert.False(t, ok)
}

func TestTrimPairTrimmingHelps(t *testing.T) {
	old, new, ok := TrimPairIfPossible("  hello  ", "  hi  ", "hello world")
	assert.True(t, ok)
	assert.Equal(t, "hello", old)
	assert.Equal(t, "hi", new)
}

func TestTrimPairNoContentMatch(t *testing.T) {
	_, _, ok := TrimPairIfPossible("  xyz  ", "  abc  ", "hello world")
	assert.False(t, ok)
}

func TestFindClosestMatchFound(t *testing.T) {
	hint := FindClosestMatch("fn main() {\n    let x = 1;\n}\n", "fn main() {\n    let x = 2;\n}")
	assert.Contains(t, hint, "partial match")
}

func TestFindClosestMatchNotFound(t *testing.T) {
	hint := FindClosestMatch("fn main() {}\n", "nonexistent_function()")
	assert.Contains(t, hint, "not found anywhere")
}

func TestDiffStats(t *testing.T) {
	assert.Equal(t, " (+1/-1 lines)", DiffStats("a\nb\nc\n", "a\nB\nc\n"))
	assert.Equal(t, " (+1/-0 lines)", DiffStats("a\n", "a\nb\n"))
	assert.Equal(t, " (+0/-1 lines)", DiffStats("a\nb\n", "a\n"))
	assert.Equal(t, "", DiffStats("same\n", "same\n"))
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}
