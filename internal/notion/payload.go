package notion

import (
	"fmt"

	"sitewatch/internal/core"
)

// richText is the API's text fragment shape.
type richText struct {
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

type textBody struct {
	Content string `json:"content"`
}

func richTextOf(content string) []richText {
	return []richText{{Type: "text", Text: textBody{Content: content}}}
}

// blockPayload renders one typed block as the API's wire shape. The
// type-specific body sits under a key named after the block type, so the
// payload is a map rather than a fixed struct.
func blockPayload(b core.Block) map[string]any {
	payload := map[string]any{"object": "block"}

	switch b.Type {
	case core.BlockHeading:
		key := fmt.Sprintf("heading_%d", b.Level)
		payload["type"] = key
		payload[key] = map[string]any{"rich_text": richTextOf(b.Text)}
	case core.BlockDivider:
		payload["type"] = "divider"
		payload["divider"] = map[string]any{}
	case core.BlockBulletItem:
		payload["type"] = "bulleted_list_item"
		payload["bulleted_list_item"] = map[string]any{"rich_text": richTextOf(b.Text)}
	case core.BlockNumberedItem:
		payload["type"] = "numbered_list_item"
		payload["numbered_list_item"] = map[string]any{"rich_text": richTextOf(b.Text)}
	case core.BlockQuote:
		payload["type"] = "quote"
		payload["quote"] = map[string]any{"rich_text": richTextOf(b.Text)}
	case core.BlockCode:
		payload["type"] = "code"
		payload["code"] = map[string]any{
			"rich_text": richTextOf(b.Text),
			"language":  b.Language,
		}
	default:
		payload["type"] = "paragraph"
		payload["paragraph"] = map[string]any{"rich_text": richTextOf(b.Text)}
	}

	return payload
}

func batchPayload(batch core.BlockBatch) []map[string]any {
	out := make([]map[string]any, 0, len(batch))
	for _, b := range batch {
		out = append(out, blockPayload(b))
	}
	return out
}
