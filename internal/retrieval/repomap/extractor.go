package repomap

import (
	"bufio"
	"regexp"
	"strings"
)

// funcPatterns maps a language (as detected by the chunker) to the
// regular expressions used to recognize a definition's start line.
// This is a heuristic, line-oriented stand-in for a full AST walk:
// nothing in the retrieval pack shows a verified tree-sitter call
// site, so extraction here only needs to be good enough to seed the
// reference graph, not byte-exact.
var funcPatterns = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:struct|interface)\b`),
	},
	"python": {
		regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)\b`),
	},
	"rust": {
		regexp.MustCompile(`^\s*(?:pub\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(<]`),
		regexp.MustCompile(`^\s*(?:pub\s+)?struct\s+([A-Za-z_][A-Za-z0-9_]*)\b`),
	},
	"javascript": {
		regexp.MustCompile(`^\s*(?:export\s+)?function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)\b`),
	},
	"typescript": {
		regexp.MustCompile(`^\s*(?:export\s+)?function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)\b`),
	},
}

// identifierRe recognizes any identifier token; ExtractReferences
// keeps the ones that name a known symbol, used to build cross-file
// reference edges once a symbol's defining file is known.
var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ExtractDefinitions scans content line by line and returns every
// recognized top-level definition for language.
func ExtractDefinitions(language, content string) []CodeTag {
	patterns, ok := funcPatterns[language]
	if !ok {
		return nil
	}

	var tags []CodeTag
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		for _, re := range patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			kind := TagFunction
			if strings.Contains(re.String(), "struct|interface") || strings.Contains(re.String(), "class") || strings.Contains(re.String(), "struct") {
				kind = TagType
			}
			sig := strings.TrimSpace(text)
			tags = append(tags, CodeTag{
				Name:         m[1],
				Kind:         kind,
				StartLine:    line,
				EndLine:      line,
				Signature:    &sig,
				IsDefinition: true,
			})
			break
		}
	}
	return tags
}

// ExtractReferences returns the set of identifiers mentioned in
// content that match one of the known symbol names, used to draw
// reference edges from this file to each name's defining file.
func ExtractReferences(content string, knownSymbols map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range identifierRe.FindAllString(content, -1) {
		if knownSymbols[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
