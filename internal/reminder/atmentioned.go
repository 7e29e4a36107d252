package reminder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// mentionPattern matches an @-mention of a file or directory, with an
// optional ":start-end" or ":line" line-range suffix. Mentions must
// start at a word boundary so email-like "user@host" text is never
// mistaken for a file reference.
var mentionPattern = regexp.MustCompile(`(?:^|\s)@([^\s:]+)(?::(\d+)(?:-(\d+))?)?`)

type fileMention struct {
	Path      string
	LineStart int // 1-indexed, 0 means "from the start"
	LineEnd   int // 0 means "to the end"
}

// parseFileMentions extracts every @-mention from prompt. The
// reference generator this is ported from received already-parsed
// mentions; this reconstructs the parser from the generator's own
// usage of mention.resolve/line_start/line_end.
func parseFileMentions(prompt string) []fileMention {
	matches := mentionPattern.FindAllStringSubmatch(prompt, -1)
	var out []fileMention
	seen := make(map[string]bool)
	for _, m := range matches {
		path := m[1]
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		fm := fileMention{Path: path}
		if m[2] != "" {
			fm.LineStart, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			fm.LineEnd, _ = strconv.Atoi(m[3])
		} else if fm.LineStart != 0 {
			fm.LineEnd = fm.LineStart
		}
		out = append(out, fm)
	}
	return out
}

// AtMentionedFilesGenerator reads every @-mentioned file or directory
// in the user's prompt and formats it as a synthetic Read-tool
// transcript, so the model sees the content without the user having to
// invoke the tool explicitly.
type AtMentionedFilesGenerator struct{}

func NewAtMentionedFilesGenerator() *AtMentionedFilesGenerator { return &AtMentionedFilesGenerator{} }

func (g *AtMentionedFilesGenerator) Name() string { return "at_mentioned_files" }
func (g *AtMentionedFilesGenerator) AttachmentType() AttachmentType {
	return AttachmentAtMentionedFiles
}
func (g *AtMentionedFilesGenerator) Tier() Tier { return TierUserPrompt }
func (g *AtMentionedFilesGenerator) IsEnabled(cfg Config) bool {
	return cfg.Attachments.AtMentionedFiles
}

func (g *AtMentionedFilesGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	mentions := parseFileMentions(gctx.UserPrompt)
	if len(mentions) == 0 {
		return nil, nil
	}
	cfg := gctx.Config.AtMentionedFiles

	var b strings.Builder
	for _, m := range mentions {
		resolved := m.Path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(gctx.CWD, resolved)
		}
		fmt.Fprintf(&b, "Called the Read tool with the following input: %s\n", jsonObj("file_path", m.Path))

		info, err := os.Stat(resolved)
		if err != nil {
			fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n", fmt.Sprintf("Error: %v", err))
			continue
		}
		if info.IsDir() {
			listing, err := listDirectory(resolved)
			if err != nil {
				fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n", fmt.Sprintf("Error: %v", err))
				continue
			}
			b.WriteString("Result of calling the Read tool (directory listing):\n")
			b.WriteString(listing)
			b.WriteString("\n\n")
			continue
		}
		if info.Size() > cfg.MaxFileSize {
			fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n",
				fmt.Sprintf("Error: File too large (%d bytes, max %d bytes)", info.Size(), cfg.MaxFileSize))
			continue
		}
		content, err := readFileContent(resolved, m.LineStart, m.LineEnd, cfg.MaxLines, cfg.MaxLineLength)
		if err != nil {
			fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n", fmt.Sprintf("Error: %v", err))
			continue
		}
		fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n", content)
	}
	return &SystemReminder{Type: AttachmentAtMentionedFiles, Content: b.String()}, nil
}

func readFileContent(path string, lineStart, lineEnd, maxLines, maxLineLength int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	lineNum := 0
	emitted := 0
	truncated := false
	for scanner.Scan() {
		lineNum++
		if lineStart > 0 && lineNum < lineStart {
			continue
		}
		if lineEnd > 0 && lineNum > lineEnd {
			break
		}
		if emitted >= maxLines {
			truncated = true
			break
		}
		line := truncateLine(scanner.Text(), maxLineLength)
		fmt.Fprintf(&b, "%6d\t%s\n", lineNum, line)
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if truncated {
		remaining := countRemainingLines(path, lineNum-1)
		fmt.Fprintf(&b, "\n... truncated (%d more lines)\n", remaining)
	}
	return b.String(), nil
}

func countRemainingLines(path string, from int) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	total := 0
	for scanner.Scan() {
		total++
	}
	remaining := total - from
	if remaining < 0 {
		return 0
	}
	return remaining
}

func truncateLine(line string, maxLen int) string {
	if maxLen <= 0 || len(line) <= maxLen {
		return line
	}
	return line[:maxLen] + "..."
}

func listDirectory(path string) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var b strings.Builder
	fmt.Fprintf(&b, "  dir: %s\n", filepath.Base(path))
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		fmt.Fprintf(&b, "  %s: %s\n", kind, e.Name())
	}
	return b.String(), nil
}

// jsonObj renders a single-key JSON object literal for the
// "Called the Read tool with the following input" line.
func jsonObj(key, value string) string {
	return fmt.Sprintf("{%q:%q}", key, value)
}
