package notion

import (
	"strings"
	"testing"

	"sitewatch/internal/core"
)

func TestConvertMarkdown_MixedDocument(t *testing.T) {
	markdown := "## Weekly Summary\n\nTraffic grew across\nall major channels.\n\n- Organic up 25%\n1. Review landing pages\n> Data covers June 11-17.\n\n---\n"

	blocks := ConvertMarkdown(markdown)
	if len(blocks) != 6 {
		t.Fatalf("Expected 6 blocks, got %d: %+v", len(blocks), blocks)
	}

	if blocks[0].Type != core.BlockHeading || blocks[0].Level != 2 || blocks[0].Text != "Weekly Summary" {
		t.Errorf("Unexpected heading block: %+v", blocks[0])
	}
	if blocks[1].Type != core.BlockParagraph || blocks[1].Text != "Traffic grew across all major channels." {
		t.Errorf("Soft-wrapped lines should merge into one paragraph: %+v", blocks[1])
	}
	if blocks[2].Type != core.BlockBulletItem || blocks[2].Text != "Organic up 25%" {
		t.Errorf("Unexpected bullet block: %+v", blocks[2])
	}
	if blocks[3].Type != core.BlockNumberedItem || blocks[3].Text != "Review landing pages" {
		t.Errorf("Unexpected numbered block: %+v", blocks[3])
	}
	if blocks[4].Type != core.BlockQuote || blocks[4].Text != "Data covers June 11-17." {
		t.Errorf("Unexpected quote block: %+v", blocks[4])
	}
	if blocks[5].Type != core.BlockDivider {
		t.Errorf("Unexpected final block: %+v", blocks[5])
	}
}

func TestConvertMarkdown_TypicalAnalysisShape(t *testing.T) {
	markdown := "# Title\n\nSome **paragraph** text.\n\n- item one\n- item two\n\n---\n\n> a quote"

	blocks := ConvertMarkdown(markdown)
	if len(blocks) != 6 {
		t.Fatalf("Expected 6 blocks, got %d: %+v", len(blocks), blocks)
	}

	want := []core.Block{
		{Type: core.BlockHeading, Level: 1, Text: "Title"},
		{Type: core.BlockParagraph, Text: "Some **paragraph** text."},
		{Type: core.BlockBulletItem, Text: "item one"},
		{Type: core.BlockBulletItem, Text: "item two"},
		{Type: core.BlockDivider},
		{Type: core.BlockQuote, Text: "a quote"},
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("Block %d: expected %+v, got %+v", i, want[i], blocks[i])
		}
	}
}

func TestConvertMarkdown_HeadingLevels(t *testing.T) {
	blocks := ConvertMarkdown("# One\n## Two\n### Three\n")
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	for i, want := range []int{1, 2, 3} {
		if blocks[i].Type != core.BlockHeading || blocks[i].Level != want {
			t.Errorf("Block %d: expected heading level %d, got %+v", i, want, blocks[i])
		}
	}
}

func TestConvertMarkdown_DeepHeadingIsParagraphText(t *testing.T) {
	blocks := ConvertMarkdown("#### Four\n")
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Type != core.BlockParagraph || blocks[0].Text != "#### Four" {
		t.Errorf("Four hashes should fall through to a paragraph, got %+v", blocks[0])
	}
}

func TestConvertMarkdown_DeepHeadingMergesIntoParagraph(t *testing.T) {
	blocks := ConvertMarkdown("leading text\n#### not a heading\n")
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 merged paragraph, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "leading text #### not a heading" {
		t.Errorf("Unexpected merged text: %q", blocks[0].Text)
	}
}

func TestConvertMarkdown_HashWithoutSpaceIsParagraph(t *testing.T) {
	blocks := ConvertMarkdown("#hashtag not a heading\n")
	if len(blocks) != 1 || blocks[0].Type != core.BlockParagraph {
		t.Fatalf("Expected one paragraph, got %+v", blocks)
	}
}

func TestConvertMarkdown_TableCapturedVerbatim(t *testing.T) {
	table := "| ID | Source | Sessions |\n|----|--------|----------|\n| SRC001 | google | 1200 |\n| SRC002 | direct | 800 |"
	markdown := "Before the table.\n\n" + table + "\n\nAfter the table.\n"

	blocks := ConvertMarkdown(markdown)
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}

	code := blocks[1]
	if code.Type != core.BlockCode {
		t.Fatalf("Expected code block for table, got %+v", code)
	}
	if code.Language != "plain text" {
		t.Errorf("Expected language 'plain text', got %q", code.Language)
	}
	if code.Text != table {
		t.Errorf("Table not captured verbatim.\nWant:\n%s\nGot:\n%s", table, code.Text)
	}
}

func TestConvertMarkdown_IndentedTableKeptUntrimmed(t *testing.T) {
	table := "  | a | b |  \n  |---|---|\n  | 1 | 2 |"

	blocks := ConvertMarkdown(table)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Type != core.BlockCode {
		t.Fatalf("Expected code block, got %+v", blocks[0])
	}
	// Indentation and trailing spaces survive; only detection trims.
	if blocks[0].Text != table {
		t.Errorf("Table not kept verbatim.\nWant:\n%q\nGot:\n%q", table, blocks[0].Text)
	}
}

func TestConvertMarkdown_ParagraphStopsAtStructuralLine(t *testing.T) {
	blocks := ConvertMarkdown("First thought\n- a bullet\nsecond thought\n")

	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "First thought" || blocks[2].Text != "second thought" {
		t.Errorf("Bullet should split the surrounding paragraphs: %+v", blocks)
	}
}

func TestConvertMarkdown_LongTextTruncated(t *testing.T) {
	long := strings.Repeat("x", MaxBlockTextLen+200)

	blocks := ConvertMarkdown(long)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}

	text := blocks[0].Text
	if !strings.HasSuffix(text, "...") {
		t.Error("Truncated block should end with ellipsis")
	}
	if got := len([]rune(strings.TrimSuffix(text, "..."))); got != MaxBlockTextLen {
		t.Errorf("Expected %d retained runes, got %d", MaxBlockTextLen, got)
	}
}

func TestConvertMarkdown_ExactLimitNotTruncated(t *testing.T) {
	exact := strings.Repeat("x", MaxBlockTextLen)

	blocks := ConvertMarkdown(exact)
	if blocks[0].Text != exact {
		t.Error("Text at exactly the limit should pass through unchanged")
	}
}

func TestConvertMarkdown_BlankLinesSkipped(t *testing.T) {
	blocks := ConvertMarkdown("\n\n# Title\n\n\n\nbody\n\n")
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
}

func TestBatch_SplitsAtLimit(t *testing.T) {
	blocks := make([]core.Block, 250)
	for i := range blocks {
		blocks[i] = core.Block{Type: core.BlockParagraph, Text: "p"}
	}

	batches := Batch(blocks)
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
		t.Errorf("Unexpected batch sizes: %d, %d, %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestBatch_Empty(t *testing.T) {
	if got := Batch(nil); got != nil {
		t.Errorf("Expected no batches for empty input, got %d", len(got))
	}
}
