package protocol

// ConcurrencySafety classifies a tool for the scheduler. Safe tools may
// run in parallel with each other; Unsafe tools serialize in the order
// the model emitted their calls.
type ConcurrencySafety string

const (
	Safe   ConcurrencySafety = "safe"
	Unsafe ConcurrencySafety = "unsafe"
)

// ToolVariant names the wire shape an adapter should forward a
// ToolDefinition as.
type ToolVariant string

const (
	VariantFunction   ToolVariant = "function"
	VariantLocalShell ToolVariant = "local_shell"
	VariantWebSearch  ToolVariant = "web_search"
	VariantFreeform   ToolVariant = "freeform"
)

// ToolDefinition describes a tool's identity and scheduling class,
// independent of any provider wire format.
type ToolDefinition struct {
	Name           string
	Description    string
	InputSchema    map[string]any
	Concurrency    ConcurrencySafety
	IsReadOnly     bool
	FeatureGate    string
	MaxResultChars int
}

// ToolSpec extends ToolDefinition with the provider-facing variant and,
// for Freeform tools, the grammar the provider should constrain
// generation to. This is what the adapter forwards to the provider.
type ToolSpec struct {
	ToolDefinition
	Variant ToolVariant
	Grammar string
}

// ToolCall is one invocation the model requested.
type ToolCall struct {
	ID            string
	Name          string
	ArgumentsJSON string
}

// ValidationOutcome tags a ValidationResult variant.
type ValidationOutcome string

const (
	ValidationValid   ValidationOutcome = "valid"
	ValidationInvalid ValidationOutcome = "invalid"
)

// ValidationError names one invalid field and why.
type ValidationError struct {
	Path    string
	Message string
}

// ValidationResult is the outcome of a tool's validate stage.
type ValidationResult struct {
	Outcome ValidationOutcome
	Errors  []ValidationError
}

func Valid() ValidationResult { return ValidationResult{Outcome: ValidationValid} }

func Invalid(errs ...ValidationError) ValidationResult {
	return ValidationResult{Outcome: ValidationInvalid, Errors: errs}
}

func (v ValidationResult) IsValid() bool { return v.Outcome == ValidationValid }

// RiskSeverity grades a SecurityRisk surfaced in an ApprovalRequest.
type RiskSeverity string

const (
	RiskLow      RiskSeverity = "low"
	RiskMedium   RiskSeverity = "medium"
	RiskHigh     RiskSeverity = "high"
	RiskCritical RiskSeverity = "critical"
)

// SecurityRisk is one concrete concern surfaced to the approval prompt,
// e.g. a destructive shell command or a write outside the workspace.
type SecurityRisk struct {
	Type     string
	Severity RiskSeverity
	Message  string
}

// ApprovalRequest carries everything the approval UI needs to render a
// human-in-the-loop prompt and, if approved, cache the decision.
type ApprovalRequest struct {
	RequestID     string
	ToolName      string
	Description   string
	Risks         []SecurityRisk
	AllowRemember bool
	CachePrefix   string
}

// PermissionOutcome tags a PermissionResult variant.
type PermissionOutcome string

const (
	PermissionAllowed       PermissionOutcome = "allowed"
	PermissionPassthrough   PermissionOutcome = "passthrough"
	PermissionDenied        PermissionOutcome = "denied"
	PermissionNeedsApproval PermissionOutcome = "needs_approval"
)

// PermissionResult is the outcome of a tool's check_permission stage.
// Allowed proceeds straight to execute; Passthrough defers to the
// session's higher-level approval policy; Denied stops with Reason;
// NeedsApproval surfaces Request to the human-in-the-loop prompt.
type PermissionResult struct {
	Outcome PermissionOutcome
	Reason  string
	Request *ApprovalRequest
}

func Allowed() PermissionResult { return PermissionResult{Outcome: PermissionAllowed} }

func Passthrough() PermissionResult { return PermissionResult{Outcome: PermissionPassthrough} }

func Denied(reason string) PermissionResult {
	return PermissionResult{Outcome: PermissionDenied, Reason: reason}
}

func NeedsApproval(req ApprovalRequest) PermissionResult {
	return PermissionResult{Outcome: PermissionNeedsApproval, Request: &req}
}

// ContextModifierKind tags a ContextModifier variant.
type ContextModifierKind string

const (
	ModifierFileRead ContextModifierKind = "file_read"
)

// ContextModifier is a side effect a tool output feeds back into the
// turn's context, e.g. recording that a file was read so the
// read-before-write invariant is satisfied for a later write.
type ContextModifier struct {
	Kind    ContextModifierKind
	Path    string
	Content string
	Hash    string
}

// OutputBlockKind tags a structured ToolOutput content block.
type OutputBlockKind string

const (
	BlockText       OutputBlockKind = "text"
	BlockStructured OutputBlockKind = "structured"
)

// OutputBlock is one piece of ToolOutput content.
type OutputBlock struct {
	Kind       OutputBlockKind
	Text       string
	Structured any
}

// ToolOutput is the result of running a tool through the five-stage
// pipeline.
type ToolOutput struct {
	Blocks    []OutputBlock
	IsError   bool
	Modifiers []ContextModifier
	Truncated bool
}

func TextOutput(text string) ToolOutput {
	return ToolOutput{Blocks: []OutputBlock{{Kind: BlockText, Text: text}}}
}

func ErrorOutput(text string) ToolOutput {
	return ToolOutput{Blocks: []OutputBlock{{Kind: BlockText, Text: text}}, IsError: true}
}

// TextOf concatenates all text blocks.
func (o ToolOutput) TextOf() string {
	var out string
	for _, b := range o.Blocks {
		if b.Kind == BlockText {
			out += b.Text
		}
	}
	return out
}

// WithFileRead appends a FileRead context modifier recording that path
// was read with the given content and hash, satisfying read-before-write
// for a subsequent mutation in the same session.
func (o ToolOutput) WithFileRead(path, content, hash string) ToolOutput {
	o.Modifiers = append(o.Modifiers, ContextModifier{
		Kind: ModifierFileRead, Path: path, Content: content, Hash: hash,
	})
	return o
}

// TruncateTo caps the output's text blocks at maxChars, appending a
// tombstone marker. The untruncated bytes are discarded, not merely
// hidden, so the model never observes them.
func (o ToolOutput) TruncateTo(maxChars int) ToolOutput {
	if maxChars <= 0 {
		return o
	}
	total := 0
	for _, b := range o.Blocks {
		if b.Kind == BlockText {
			total += len(b.Text)
		}
	}
	if total <= maxChars {
		return o
	}
	out := o
	out.Blocks = make([]OutputBlock, 0, len(o.Blocks))
	remaining := maxChars
	for _, b := range o.Blocks {
		if b.Kind != BlockText || remaining <= 0 {
			if remaining > 0 {
				out.Blocks = append(out.Blocks, b)
			}
			continue
		}
		if len(b.Text) <= remaining {
			out.Blocks = append(out.Blocks, b)
			remaining -= len(b.Text)
			continue
		}
		out.Blocks = append(out.Blocks, OutputBlock{Kind: BlockText, Text: b.Text[:remaining]})
		remaining = 0
	}
	out.Blocks = append(out.Blocks, OutputBlock{Kind: BlockText, Text: "\n[... output truncated ...]"})
	out.Truncated = true
	return out
}
