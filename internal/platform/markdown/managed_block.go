package markdown

import "strings"

// Block is a generated region delimited by marker comments. Text outside the
// markers belongs to the user and survives regeneration.
type Block struct {
	Start string
	End   string
}

func NewBlock(name string) Block {
	return Block{
		Start: "<!-- hairly:" + name + ":start -->",
		End:   "<!-- hairly:" + name + ":end -->",
	}
}

// Replace swaps the block's content in body, appending the block when body
// has none.
func (b Block) Replace(body, generated string) string {
	start := strings.Index(body, b.Start)
	end := strings.Index(body, b.End)
	block := b.Start + "\n" + strings.TrimRight(generated, "\n") + "\n" + b.End

	if start >= 0 && end > start {
		end += len(b.End)
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Content returns what sits between the markers, if the block exists.
func (b Block) Content(body string) (string, bool) {
	start := strings.Index(body, b.Start)
	end := strings.Index(body, b.End)
	if start < 0 || end <= start {
		return "", false
	}
	return strings.Trim(body[start+len(b.Start):end], "\n"), true
}
