package reminder

import "strings"

// builtinOutputStyles are the named styles resolvable by name; callers
// may add more via RegisterOutputStyle before the orchestrator runs.
var builtinOutputStyles = map[string]string{
	"default":     "",
	"concise":     "Favor short, direct answers. Skip preamble and restating the request.",
	"explanatory": "Explain reasoning and tradeoffs alongside each change, as if teaching.",
}

// RegisterOutputStyle adds or overrides a named output style.
func RegisterOutputStyle(name, instruction string) {
	builtinOutputStyles[strings.ToLower(name)] = instruction
}

// OutputStyleSetting names a style and optionally overrides it with a
// literal instruction.
type OutputStyleSetting struct {
	StyleName              string
	CustomInstruction      string
	KeepCodingInstructions bool
}

// ResolveInstruction returns the instruction text to inject: a custom
// instruction always wins over a named style lookup.
func (o OutputStyleSetting) ResolveInstruction() string {
	if strings.TrimSpace(o.CustomInstruction) != "" {
		return o.CustomInstruction
	}
	if instr, ok := builtinOutputStyles[strings.ToLower(o.StyleName)]; ok {
		return instr
	}
	return ""
}

// DiagnosticSeverity orders LSP-style severities from most to least
// critical, lower value is more severe.
type DiagnosticSeverity int

const (
	SeverityError   DiagnosticSeverity = 1
	SeverityWarning DiagnosticSeverity = 2
	SeverityInfo    DiagnosticSeverity = 3
	SeverityHint    DiagnosticSeverity = 4
)

func parseSeverity(s string) DiagnosticSeverity {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError
	case "info":
		return SeverityInfo
	case "hint":
		return SeverityHint
	default:
		return SeverityWarning
	}
}

func severityRank(s string) DiagnosticSeverity {
	return parseSeverity(s)
}
