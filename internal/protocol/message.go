// Package protocol defines the neutral data model shared by the
// conversation driver, provider adapters, and tool pipeline: messages,
// prompts, provider/model descriptors, and tool call/output shapes.
// Nothing in this package depends on a specific provider's wire format.
package protocol

import "fmt"

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind tags a ContentItem variant.
type ContentKind string

const (
	ContentInputText  ContentKind = "input_text"
	ContentOutputText ContentKind = "output_text"
	ContentInputImage ContentKind = "input_image"
)

// ContentItem is one piece of message content: text or an image reference.
type ContentItem struct {
	Kind     ContentKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
}

func InputText(text string) ContentItem  { return ContentItem{Kind: ContentInputText, Text: text} }
func OutputText(text string) ContentItem { return ContentItem{Kind: ContentOutputText, Text: text} }
func InputImage(url string) ContentItem  { return ContentItem{Kind: ContentInputImage, ImageURL: url} }

// ItemKind tags a ResponseItem variant. ResponseItem is the tagged union
// that both conversation history and provider stream output are built
// from: user/assistant content, thinking blocks, function calls and
// their outputs, inline images, and MCP-style tool results.
type ItemKind string

const (
	ItemSystemMessage      ItemKind = "system_message"
	ItemUserMessage        ItemKind = "user_message"
	ItemAssistantMessage   ItemKind = "assistant_message"
	ItemThinkingBlock      ItemKind = "thinking_block"
	ItemFunctionCall       ItemKind = "function_call"
	ItemFunctionCallOutput ItemKind = "function_call_output"
	ItemImageBlock         ItemKind = "image_block"
	ItemToolResult         ItemKind = "tool_result"
)

// ResponseItem is one entry of conversation history or one unit produced
// by a provider stream. Exactly the fields relevant to Kind are set;
// callers switch on Kind before reading kind-specific fields.
type ResponseItem struct {
	Kind ItemKind `json:"kind"`

	// UserMessage / AssistantMessage
	Content []ContentItem `json:"content,omitempty"`

	// ThinkingBlock
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	// FunctionCall
	CallID       string `json:"call_id,omitempty"`
	Name         string `json:"name,omitempty"`
	ArgumentsRaw string `json:"arguments,omitempty"`

	// FunctionCallOutput
	OutputContent string `json:"output_content,omitempty"`
	Success       bool   `json:"success,omitempty"`

	// ImageBlock
	ImageURL string `json:"image_url,omitempty"`

	// ToolResult (MCP-shaped)
	ToolUseID string `json:"tool_use_id,omitempty"`
}

func (i ResponseItem) String() string {
	return fmt.Sprintf("%s(call_id=%q)", i.Kind, i.CallID)
}

// IsToolExchange reports whether the item is a function call, its
// output, or a tool result — used by the normalizer to decide whether
// role-alternation rules apply.
func (i ResponseItem) IsToolExchange() bool {
	switch i.Kind {
	case ItemFunctionCall, ItemFunctionCallOutput, ItemToolResult:
		return true
	default:
		return false
	}
}

// Role returns the conversational role the item should be attributed to
// for alternation checks. Thinking blocks and tool exchanges have no
// independent role; they're associated with whichever message they ride
// along with.
func (i ResponseItem) Role() (Role, bool) {
	switch i.Kind {
	case ItemSystemMessage:
		return RoleSystem, true
	case ItemUserMessage:
		return RoleUser, true
	case ItemAssistantMessage:
		return RoleAssistant, true
	default:
		return "", false
	}
}

// Message is a convenience constructor family mirroring the variant
// names in the data model.
func SystemMessage(items ...ContentItem) ResponseItem {
	return ResponseItem{Kind: ItemSystemMessage, Content: items}
}

func UserMessage(items ...ContentItem) ResponseItem {
	return ResponseItem{Kind: ItemUserMessage, Content: items}
}

func AssistantMessage(items ...ContentItem) ResponseItem {
	return ResponseItem{Kind: ItemAssistantMessage, Content: items}
}

func ThinkingBlock(text, signature string) ResponseItem {
	return ResponseItem{Kind: ItemThinkingBlock, Thinking: text, Signature: signature}
}

func FunctionCall(name, argumentsJSON, callID string) ResponseItem {
	return ResponseItem{Kind: ItemFunctionCall, Name: name, ArgumentsRaw: argumentsJSON, CallID: callID}
}

func FunctionCallOutput(callID, content string, success bool) ResponseItem {
	return ResponseItem{Kind: ItemFunctionCallOutput, CallID: callID, OutputContent: content, Success: success}
}

func ImageBlock(url string) ResponseItem {
	return ResponseItem{Kind: ItemImageBlock, ImageURL: url}
}

func ToolResult(toolUseID, content string) ResponseItem {
	return ResponseItem{Kind: ItemToolResult, ToolUseID: toolUseID, OutputContent: content}
}

// TextOf concatenates the text of all text content items, ignoring images.
func (i ResponseItem) TextOf() string {
	var out string
	for _, c := range i.Content {
		if c.Kind == ContentInputText || c.Kind == ContentOutputText {
			out += c.Text
		}
	}
	return out
}
