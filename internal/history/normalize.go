// Package history normalizes and validates conversation history before
// it is handed to a provider adapter, and builds the incremental turn
// input used when an adapter supports previous_response_id chaining.
package history

import "github.com/kadirpekel/cocode/internal/protocol"

// NormalizationOptions controls how raw tracked history is flattened
// into the item list sent to a provider.
type NormalizationOptions struct {
	SkipTombstoned          bool
	MergeConsecutive        bool
	StripThinkingSignatures bool
	IncludeEmpty            bool
}

// ForAPI returns the options used when assembling a turn's prompt:
// tombstoned items are dropped, consecutive same-role messages merge,
// thinking signatures are preserved, and empty messages are dropped.
func ForAPI() NormalizationOptions {
	return NormalizationOptions{
		SkipTombstoned:   true,
		MergeConsecutive: true,
	}
}

// ForDebug returns the options used when rendering history for
// transcripts or logging: nothing is dropped or merged.
func ForDebug() NormalizationOptions {
	return NormalizationOptions{IncludeEmpty: true}
}

// isEmptyMessage reports whether item is a message-kind item with no
// content — only user/assistant/system messages can be "empty"; every
// other item kind always counts as non-empty.
func isEmptyMessage(item protocol.ResponseItem) bool {
	switch item.Kind {
	case protocol.ItemUserMessage, protocol.ItemAssistantMessage, protocol.ItemSystemMessage:
		return len(item.Content) == 0
	default:
		return false
	}
}

// canMerge reports whether b may be folded into a: same item kind, and
// neither is a tool exchange. Per the documented conservative default,
// any item carrying an image content block is also excluded from
// merging.
func canMerge(a, b protocol.ResponseItem) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.IsToolExchange() || b.IsToolExchange() {
		return false
	}
	if hasImageBlock(a) || hasImageBlock(b) {
		return false
	}
	switch a.Kind {
	case protocol.ItemUserMessage, protocol.ItemAssistantMessage, protocol.ItemSystemMessage:
		return true
	default:
		return false
	}
}

func hasImageBlock(item protocol.ResponseItem) bool {
	if item.Kind == protocol.ItemImageBlock {
		return true
	}
	for _, c := range item.Content {
		if c.Kind == protocol.ContentInputImage {
			return true
		}
	}
	return false
}

func mergeInto(target *protocol.ResponseItem, source protocol.ResponseItem) {
	target.Content = append(target.Content, source.Content...)
}

func stripThinkingSignature(item protocol.ResponseItem) protocol.ResponseItem {
	if item.Kind == protocol.ItemThinkingBlock {
		item.Signature = ""
	}
	return item
}

// NormalizeForAPI applies opts to tracked, producing the flat item
// sequence a provider adapter should see. Tombstoned items are dropped
// first (if configured), then empty messages are dropped (unless
// IncludeEmpty), then thinking signatures are optionally stripped, then
// adjacent mergeable items are folded together in a single left-to-right
// pass.
func NormalizeForAPI(tracked []protocol.TrackedMessage, opts NormalizationOptions) []protocol.ResponseItem {
	normalized := make([]protocol.ResponseItem, 0, len(tracked))

	for _, tm := range tracked {
		if opts.SkipTombstoned && tm.Tombstoned {
			continue
		}

		item := tm.Item
		if !opts.IncludeEmpty && isEmptyMessage(item) {
			continue
		}

		if opts.StripThinkingSignatures {
			item = stripThinkingSignature(item)
		}

		if opts.MergeConsecutive && len(normalized) > 0 {
			last := &normalized[len(normalized)-1]
			if canMerge(*last, item) {
				mergeInto(last, item)
				continue
			}
		}

		normalized = append(normalized, item)
	}

	return normalized
}

// NormalizeItemsForAPI is NormalizeForAPI for callers that already hold
// plain items rather than TrackedMessage (e.g. building pending input).
func NormalizeItemsForAPI(items []protocol.ResponseItem, opts NormalizationOptions) []protocol.ResponseItem {
	tracked := make([]protocol.TrackedMessage, len(items))
	for i, it := range items {
		tracked[i] = protocol.NewTracked(it)
	}
	return NormalizeForAPI(tracked, opts)
}

// EstimateTokens gives a rough token estimate for a slice of items:
// four characters per token for text, a flat cost for images and tool
// payloads.
func EstimateTokens(items []protocol.ResponseItem) int {
	total := 0
	for _, item := range items {
		switch item.Kind {
		case protocol.ItemUserMessage, protocol.ItemAssistantMessage, protocol.ItemSystemMessage:
			for _, c := range item.Content {
				switch c.Kind {
				case protocol.ContentInputText, protocol.ContentOutputText:
					total += len(c.Text) / 4
				case protocol.ContentInputImage:
					total += 1000
				}
			}
		case protocol.ItemThinkingBlock:
			total += len(item.Thinking) / 4
		case protocol.ItemFunctionCall:
			total += len(item.ArgumentsRaw) / 4
		case protocol.ItemFunctionCallOutput, protocol.ItemToolResult:
			total += len(item.OutputContent) / 4
		case protocol.ItemImageBlock:
			total += 1000
		}
	}
	return total
}
