package bbcode

// Block is one valid map tag found inside a larger text.
type Block struct {
	// Start and End are byte offsets of the tag in the scanned text.
	Start    int      `json:"start" yaml:"start"`
	End      int      `json:"end" yaml:"end"`
	Raw      string   `json:"raw" yaml:"raw"`
	Document Document `json:"document" yaml:"document"`
}

// Scan finds every map tag in text. Candidate regions run from an opening
// substring to the nearest closing tag and are kept only when the whole
// region matches the grammar; otherwise scanning resumes right after the
// rejected opening substring.
func (c *Codec) Scan(text string) []Block {
	var blocks []Block

	pos := 0
	for pos < len(text) {
		open := c.grammar.openRe.FindStringIndex(text[pos:])
		if open == nil {
			break
		}
		start := pos + open[0]

		closing := c.grammar.closeRe.FindStringIndex(text[start:])
		if closing == nil {
			break
		}
		end := start + closing[1]

		raw := text[start:end]
		if loc := c.grammar.mapRe.FindStringIndex(raw); loc != nil && loc[0] == 0 && loc[1] == len(raw) {
			blocks = append(blocks, Block{
				Start:    start,
				End:      end,
				Raw:      raw,
				Document: c.Parse(raw),
			})
			pos = end
			continue
		}

		c.log().Trace().Int("offset", start).Msg("Skipping invalid map tag candidate")
		pos = start + open[1] - open[0]
	}

	return blocks
}
