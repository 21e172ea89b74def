// Package notion converts rendered markdown into typed document blocks
// and publishes them to a Notion workspace.
package notion

import (
	"strings"
	"unicode"

	"sitewatch/internal/core"
)

// MaxBlockTextLen is the per-block character ceiling imposed by the
// publishing API. Longer text is cut and marked with an ellipsis.
const MaxBlockTextLen = 1900

// MaxBlocksPerBatch is the per-request block ceiling of the publishing API.
const MaxBlocksPerBatch = 100

// tableLanguage is the code-block language used for captured tables.
// Notion has no native markdown-table block, so tables are preserved
// verbatim as plain-text code blocks.
const tableLanguage = "plain text"

// ConvertMarkdown scans the markdown line by line and emits typed blocks
// in document order. Line classification is first-match: heading,
// divider, bullet, numbered item, table run, quote, then paragraph.
// Consecutive plain lines merge into a single paragraph; consecutive
// table lines merge into a single code block.
func ConvertMarkdown(markdown string) []core.Block {
	lines := strings.Split(markdown, "\n")
	blocks := make([]core.Block, 0, len(lines))

	var paragraph []string
	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, core.Block{
			Type: core.BlockParagraph,
			Text: clip(strings.Join(paragraph, " ")),
		})
		paragraph = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flushParagraph()
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "#"):
			level, text := splitHeading(trimmed)
			if level == 0 {
				// A hash run with no space, or deeper than three
				// levels, is not a heading.
				paragraph = append(paragraph, trimmed)
				continue
			}
			flushParagraph()
			blocks = append(blocks, core.Block{Type: core.BlockHeading, Level: level, Text: clip(text)})

		case trimmed == "---":
			flushParagraph()
			blocks = append(blocks, core.Block{Type: core.BlockDivider})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			blocks = append(blocks, core.Block{Type: core.BlockBulletItem, Text: clip(trimmed[2:])})

		case numberedText(trimmed) != "":
			flushParagraph()
			blocks = append(blocks, core.Block{Type: core.BlockNumberedItem, Text: clip(numberedText(trimmed))})

		case strings.HasPrefix(trimmed, "|"):
			flushParagraph()
			// The run is kept verbatim: detection trims, content does not.
			run := []string{lines[i]}
			for i+1 < len(lines) {
				if !strings.HasPrefix(strings.TrimSpace(lines[i+1]), "|") {
					break
				}
				i++
				run = append(run, lines[i])
			}
			blocks = append(blocks, core.Block{
				Type:     core.BlockCode,
				Text:     clip(strings.Join(run, "\n")),
				Language: tableLanguage,
			})

		case strings.HasPrefix(trimmed, ">"):
			flushParagraph()
			blocks = append(blocks, core.Block{
				Type: core.BlockQuote,
				Text: clip(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))),
			})

		default:
			paragraph = append(paragraph, trimmed)
		}
	}
	flushParagraph()

	return blocks
}

// Batch splits blocks into publish-sized chunks, preserving order. The
// last chunk holds the remainder; an empty input yields no chunks.
func Batch(blocks []core.Block) []core.BlockBatch {
	if len(blocks) == 0 {
		return nil
	}

	batches := make([]core.BlockBatch, 0, (len(blocks)+MaxBlocksPerBatch-1)/MaxBlocksPerBatch)
	for start := 0; start < len(blocks); start += MaxBlocksPerBatch {
		end := start + MaxBlocksPerBatch
		if end > len(blocks) {
			end = len(blocks)
		}
		batches = append(batches, core.BlockBatch(blocks[start:end]))
	}
	return batches
}

// splitHeading returns the heading level (1-3) and text, or level 0 when
// the line is not a well-formed heading. Only three levels exist; a
// deeper hash run is plain paragraph text.
func splitHeading(line string) (int, string) {
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	if hashes > 3 || hashes == len(line) || line[hashes] != ' ' {
		return 0, ""
	}
	return hashes, strings.TrimSpace(line[hashes:])
}

// numberedText returns the item text of an ordered-list line ("1. foo"
// gives "foo"), or the empty string when the line is not one.
func numberedText(line string) string {
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i == 0 || i+1 >= len(line) || line[i] != '.' || line[i+1] != ' ' {
		return ""
	}
	return strings.TrimSpace(line[i+2:])
}

// clip enforces the per-block text ceiling, appending an ellipsis when
// text was dropped.
func clip(text string) string {
	r := []rune(text)
	if len(r) <= MaxBlockTextLen {
		return text
	}
	return string(r[:MaxBlockTextLen]) + "..."
}
