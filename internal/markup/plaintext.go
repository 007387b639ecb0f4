package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockEnds are closing tags that end a line of text.
var blockEnds = map[string]bool{
	"h1": true, "h2": true, "h3": true,
	"li": true, "pre": true, "p": true,
}

// PlainText strips tags from rendered HTML, turning <br> and block
// boundaries into newlines and unescaping entities. A <br> directly after
// a block end does not add a second newline.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	afterBlock := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimRight(b.String(), "\n")
			}
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
			afterBlock = false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				if !afterBlock {
					b.WriteByte('\n')
				}
				afterBlock = false
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if blockEnds[string(name)] {
				b.WriteByte('\n')
				afterBlock = true
			}
		}
	}
}
