package layout

import (
	"sort"
	"strings"
	"testing"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

func tableFromTokens(tokens []model.Token) *model.TokenTable {
	table := &model.TokenTable{}
	for _, tok := range tokens {
		table.Append(tok)
	}
	return table
}

func TestAssembleLines_GroupsByLayoutKey(t *testing.T) {
	table := tableFromTokens([]model.Token{
		{Text: "Service", Left: 10, Top: 100, Width: 60, Height: 12, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "Date:", Left: 75, Top: 101, Width: 40, Height: 12, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "05/03/2021", Left: 120, Top: 100, Width: 80, Height: 12, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "Total:", Left: 10, Top: 130, Width: 50, Height: 12, BlockNum: 1, ParNum: 1, LineNum: 2},
		{Text: "1500.00", Left: 65, Top: 131, Width: 60, Height: 12, BlockNum: 1, ParNum: 1, LineNum: 2},
	})

	lines := AssembleLines(table)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Service Date: 05/03/2021" {
		t.Errorf("unexpected first line text: %q", lines[0].Text)
	}
	if lines[1].Text != "Total: 1500.00" {
		t.Errorf("unexpected second line text: %q", lines[1].Text)
	}

	// Bounding box comes from the first token of each group.
	if lines[0].Left != 10 || lines[0].Top != 100 || lines[0].Width != 60 {
		t.Errorf("unexpected first line box: %+v", lines[0])
	}
}

func TestAssembleLines_SortedByTop(t *testing.T) {
	table := tableFromTokens([]model.Token{
		{Text: "bottom", Top: 500, BlockNum: 2, ParNum: 1, LineNum: 1},
		{Text: "top", Top: 50, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "middle", Top: 250, BlockNum: 1, ParNum: 2, LineNum: 1},
	})

	lines := AssembleLines(table)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !sort.SliceIsSorted(lines, func(a, b int) bool { return lines[a].Top < lines[b].Top }) {
		t.Errorf("lines not sorted by top: %+v", lines)
	}
	if lines[0].Text != "top" || lines[1].Text != "middle" || lines[2].Text != "bottom" {
		t.Errorf("unexpected order: %q %q %q", lines[0].Text, lines[1].Text, lines[2].Text)
	}
}

func TestAssembleLines_PreservesAllWords(t *testing.T) {
	tokens := []model.Token{
		{Text: "alpha", Top: 10, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "", Top: 10, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "beta", Top: 10, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "  ", Top: 20, BlockNum: 1, ParNum: 1, LineNum: 2},
		{Text: "gamma", Top: 20, BlockNum: 1, ParNum: 1, LineNum: 2},
	}

	lines := AssembleLines(tableFromTokens(tokens))

	got := make(map[string]bool)
	for _, line := range lines {
		for _, w := range strings.Fields(line.Text) {
			got[w] = true
		}
	}
	for _, want := range []string{"alpha", "beta", "gamma"} {
		if !got[want] {
			t.Errorf("word %q missing from assembled lines", want)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected exactly 3 distinct words, got %d", len(got))
	}
}

func TestAssembleLines_EmptyInput(t *testing.T) {
	if got := AssembleLines(nil); len(got) != 0 {
		t.Errorf("expected no lines for nil table, got %d", len(got))
	}
	if got := AssembleLines(&model.TokenTable{}); len(got) != 0 {
		t.Errorf("expected no lines for empty table, got %d", len(got))
	}
	// Tokens that are all empty text behave like an empty page.
	table := tableFromTokens([]model.Token{{Text: ""}, {Text: "   "}})
	if got := AssembleLines(table); len(got) != 0 {
		t.Errorf("expected no lines for whitespace-only tokens, got %d", len(got))
	}
}

func TestAssembleLines_StableTieOrder(t *testing.T) {
	// Two lines with identical top coordinates keep input order.
	table := tableFromTokens([]model.Token{
		{Text: "first", Top: 40, BlockNum: 1, ParNum: 1, LineNum: 1},
		{Text: "second", Top: 40, BlockNum: 1, ParNum: 1, LineNum: 2},
	})
	lines := AssembleLines(table)
	if len(lines) != 2 || lines[0].Text != "first" || lines[1].Text != "second" {
		t.Errorf("expected stable order on tie, got %+v", lines)
	}
}
