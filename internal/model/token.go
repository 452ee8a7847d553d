package model

// Token is a single recognized word with its position and the layout
// grouping identifiers assigned by the OCR engine.
type Token struct {
	Text     string `json:"text"`
	Left     int    `json:"left"`
	Top      int    `json:"top"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BlockNum int    `json:"block_num"`
	ParNum   int    `json:"par_num"`
	LineNum  int    `json:"line_num"`
}

// TokenTable is the positional OCR output for one page as parallel,
// index-aligned arrays (the shape Tesseract's TSV output uses).
type TokenTable struct {
	Text     []string
	Left     []int
	Top      []int
	Width    []int
	Height   []int
	BlockNum []int
	ParNum   []int
	LineNum  []int
}

// Len returns the number of entries in the table.
func (t *TokenTable) Len() int {
	return len(t.Text)
}

// Token returns the i-th entry as a Token value.
func (t *TokenTable) Token(i int) Token {
	return Token{
		Text:     t.Text[i],
		Left:     t.Left[i],
		Top:      t.Top[i],
		Width:    t.Width[i],
		Height:   t.Height[i],
		BlockNum: t.BlockNum[i],
		ParNum:   t.ParNum[i],
		LineNum:  t.LineNum[i],
	}
}

// Append adds one token to the table, keeping the arrays aligned.
func (t *TokenTable) Append(tok Token) {
	t.Text = append(t.Text, tok.Text)
	t.Left = append(t.Left, tok.Left)
	t.Top = append(t.Top, tok.Top)
	t.Width = append(t.Width, tok.Width)
	t.Height = append(t.Height, tok.Height)
	t.BlockNum = append(t.BlockNum, tok.BlockNum)
	t.ParNum = append(t.ParNum, tok.ParNum)
	t.LineNum = append(t.LineNum, tok.LineNum)
}

// Line is one or more tokens sharing a (block, paragraph, line) key,
// concatenated into a single text span. The bounding box is the first
// token's box, not a union of all boxes; nothing downstream consumes the
// box beyond grouping, so the original approximation is kept.
type Line struct {
	Text   string `json:"text"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
