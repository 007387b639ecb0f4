// Package markup renders the small markdown subset used in entry content.
//
// Supported, in precedence order: fenced code blocks, inline code, ATX
// headers (#, ##, ###), bold then italic, "* " and "N. " list blocks, and
// line breaks. Everything else is escaped text. Malformed input never
// errors; dangling delimiters render literally.
package markup

import (
	"html"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Private-use runes delimit placeholders for protected fragments.
	phOpen  = "\uE000"
	phClose = "\uE001"
)

var (
	inlineCodeRe  = regexp.MustCompile("`([^`\n]+)`")
	strongEmRe    = regexp.MustCompile(`\*\*\*(\S(?:.*?\S)?)\*\*\*`)
	boldRe        = regexp.MustCompile(`\*\*(\S(?:.*?\S)?)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
	unorderedRe   = regexp.MustCompile(`^\* (.+)$`)
	orderedRe     = regexp.MustCompile(`^\d+\. (.+)$`)
	placeholderRe = regexp.MustCompile(phOpen + `(\d+)` + phClose)
)

type listKind int

const (
	listNone listKind = iota
	listUnordered
	listOrdered
)

// renderer carries the protected fragments for one Render call.
type renderer struct {
	fragments []string
}

// Render converts src to safe HTML. Empty input yields empty output.
func Render(src string) template.HTML {
	if src == "" {
		return ""
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.NewReplacer(phOpen, "", phClose, "").Replace(src)

	r := &renderer{}
	src = r.extractFences(src)
	src = inlineCodeRe.ReplaceAllStringFunc(src, func(m string) string {
		code := m[1 : len(m)-1]
		return r.protect("<code>" + html.EscapeString(code) + "</code>")
	})

	out := r.renderLines(html.EscapeString(src))
	out = placeholderRe.ReplaceAllStringFunc(out, func(m string) string {
		idx, err := strconv.Atoi(m[len(phOpen) : len(m)-len(phClose)])
		if err != nil || idx < 0 || idx >= len(r.fragments) {
			return ""
		}
		return r.fragments[idx]
	})
	return template.HTML(out)
}

// protect stores rendered HTML and returns a placeholder for it.
func (r *renderer) protect(fragment string) string {
	r.fragments = append(r.fragments, fragment)
	return phOpen + strconv.Itoa(len(r.fragments)-1) + phClose
}

// extractFences replaces closed ``` blocks with placeholders.
// An unclosed fence and everything after it stays as text.
func (r *renderer) extractFences(src string) string {
	var b strings.Builder
	for {
		start := strings.Index(src, "```")
		if start < 0 {
			break
		}
		end := strings.Index(src[start+3:], "```")
		if end < 0 {
			break
		}
		body := src[start+3 : start+3+end]
		body = strings.TrimPrefix(body, "\n")
		body = strings.TrimSuffix(body, "\n")

		b.WriteString(src[:start])
		b.WriteString(r.protect("<pre><code>" + html.EscapeString(body) + "</code></pre>"))
		src = src[start+3+end+3:]
	}
	b.WriteString(src)
	return b.String()
}

// renderLines applies headers, lists and inline emphasis to escaped text
// and joins the result with <br>.
func (r *renderer) renderLines(escaped string) string {
	lines := strings.Split(escaped, "\n")
	out := make([]string, 0, len(lines))

	open := listNone
	var items []string
	flush := func() {
		if open == listNone {
			return
		}
		tag := "ul"
		if open == listOrdered {
			tag = "ol"
		}
		out = append(out, "<"+tag+">"+strings.Join(items, "")+"</"+tag+">")
		open = listNone
		items = nil
	}

	for _, line := range lines {
		kind, text := classifyListItem(line)
		if kind != listNone {
			if kind != open {
				flush()
				open = kind
			}
			items = append(items, "<li>"+emphasis(text)+"</li>")
			continue
		}
		flush()
		out = append(out, header(line))
	}
	flush()

	return strings.Join(out, "<br>")
}

func classifyListItem(line string) (listKind, string) {
	if m := unorderedRe.FindStringSubmatch(line); m != nil {
		return listUnordered, m[1]
	}
	if m := orderedRe.FindStringSubmatch(line); m != nil {
		return listOrdered, m[1]
	}
	return listNone, ""
}

// header renders an ATX header line; longest prefix first.
func header(line string) string {
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			n := strconv.Itoa(level)
			return "<h" + n + ">" + emphasis(rest) + "</h" + n + ">"
		}
	}
	return emphasis(line)
}

// emphasis applies bold before italic. A triple delimiter nests both.
func emphasis(s string) string {
	s = strongEmRe.ReplaceAllString(s, "<strong><em>$1</em></strong>")
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	return italicRe.ReplaceAllString(s, "<em>$1</em>")
}
