// Package layout turns positional OCR word tokens into ordered text lines.
package layout

import (
	"sort"
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

type lineKey struct {
	block int
	par   int
	line  int
}

// AssembleLines groups the page's tokens into text lines keyed on
// (block, paragraph, line) and returns them sorted by vertical position,
// approximating reading order. Empty-text tokens are discarded before
// grouping. The result is deterministic for identical input: ties on the
// top coordinate keep first-appearance order.
func AssembleLines(table *model.TokenTable) []model.Line {
	if table == nil || table.Len() == 0 {
		return nil
	}

	groups := make(map[lineKey]int)
	var words [][]string
	var lines []model.Line

	for i := 0; i < table.Len(); i++ {
		tok := table.Token(i)
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}

		key := lineKey{block: tok.BlockNum, par: tok.ParNum, line: tok.LineNum}
		idx, ok := groups[key]
		if !ok {
			idx = len(lines)
			groups[key] = idx
			// The first token's box stands in for the whole line.
			lines = append(lines, model.Line{
				Left:   tok.Left,
				Top:    tok.Top,
				Width:  tok.Width,
				Height: tok.Height,
			})
			words = append(words, nil)
		}
		words[idx] = append(words[idx], text)
	}

	for i := range lines {
		lines[i].Text = strings.Join(words[i], " ")
	}

	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].Top < lines[b].Top
	})
	return lines
}
