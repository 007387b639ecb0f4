package markup

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want template.HTML
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"escapes", `<script>alert("x")</script>`, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"},
		{"newlines", "a\nb", "a<br>b"},
		{"crlf", "a\r\nb", "a<br>b"},
		{"h1", "# Title", "<h1>Title</h1>"},
		{"h2", "## Sub", "<h2>Sub</h2>"},
		{"h3 before h1", "### Deep", "<h3>Deep</h3>"},
		{"hash without space", "#tag", "#tag"},
		{"bold", "**strong** text", "<strong>strong</strong> text"},
		{"italic", "an *emphasis*", "an <em>emphasis</em>"},
		{"bold not two italics", "**both**", "<strong>both</strong>"},
		{"bold and italic", "**b** and *i*", "<strong>b</strong> and <em>i</em>"},
		{"bold italic", "***x***", "<strong><em>x</em></strong>"},
		{"bold italic in text", "a ***big*** deal", "a <strong><em>big</em></strong> deal"},
		{"dangling bold", "**open", "**open"},
		{"dangling italic", "a * b", "a * b"},
		{"inline code", "use `x < y` here", "use <code>x &lt; y</code> here"},
		{"inline code protects emphasis", "`**not bold**`", "<code>**not bold**</code>"},
		{"fenced", "```\n# not a header\n**x**\n```", "<pre><code># not a header\n**x**</code></pre>"},
		{"fenced escapes", "```<b>```", "<pre><code>&lt;b&gt;</code></pre>"},
		{"unclosed fence", "```\ncode", "```<br>code"},
		{"unordered list", "* one\n* two", "<ul><li>one</li><li>two</li></ul>"},
		{"ordered list", "1. one\n2. two", "<ol><li>one</li><li>two</li></ol>"},
		{"list kind switch", "* a\n1. b", "<ul><li>a</li></ul><br><ol><li>b</li></ol>"},
		{"list closed by text", "* a\ntext\n* b", "<ul><li>a</li></ul><br>text<br><ul><li>b</li></ul>"},
		{"list item emphasis", "* **bold** item", "<ul><li><strong>bold</strong> item</li></ul>"},
		{"star without space is not a list", "*a*", "<em>a</em>"},
		{"header emphasis", "# *Fire*", "<h1><em>Fire</em></h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	in := "# T\n* a\n* b\n```\nx\n```\n**y** `z`"
	assert.Equal(t, Render(in), Render(in))
}

func TestRender_PlaceholderRunesInInputAreDropped(t *testing.T) {
	assert.Equal(t, template.HTML("a0b"), Render("a\uE0000\uE001b"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title\nbody & more", PlainText(string(Render("# Title\nbody & more"))))
	assert.Equal(t, "one\ntwo", PlainText(string(Render("* one\n* two"))))
	assert.Equal(t, "x < y", PlainText(string(Render("`x < y`"))))
}

func TestPlainText_RoundTripsPlainText(t *testing.T) {
	for _, s := range []string{
		"",
		"simple",
		"a <b> & \"c\"",
		"line one\nline two",
		"Élémentaire: 3d6 dégâts",
	} {
		assert.Equal(t, s, PlainText(string(Render(s))), s)
	}
}
