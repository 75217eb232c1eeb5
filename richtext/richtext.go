// Package richtext renders Prismic structured text as HTML and exposes it as a
// templ component. The output is trusted markup: embed blocks pass their HTML
// through unchanged.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Block is one structured-text unit.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	Spans      []Span      `json:"spans,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Oembed     *Oembed     `json:"oembed,omitempty"`
	Label      string      `json:"label,omitempty"`
}

// Span marks up the runes [Start, End) of a block's text.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData carries hyperlink targets and label names.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"` // Web, Document, Media
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Oembed struct {
	Type        string `json:"type"`
	EmbedURL    string `json:"embed_url"`
	HTML        string `json:"html"`
	ProviderURL string `json:"provider_url,omitempty"`
}

// IsText reports whether the block carries a text field.
func (b Block) IsText() bool {
	return b.Type != "image" && b.Type != "embed"
}

// DocumentLink maps a link to another document onto a site path.
var DocumentLink = func(d SpanData) string {
	if d.UID == "" {
		return "/"
	}
	return "/post/" + d.UID + "/"
}

// Component returns a templ.Component that renders blocks as HTML.
func Component(blocks []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderTo(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render returns the HTML for blocks.
func Render(blocks []Block) string {
	var buf bytes.Buffer
	RenderTo(&buf, blocks)
	return buf.String()
}

// RenderTo writes the HTML for blocks to buf. Consecutive list items are
// grouped into a single list.
func RenderTo(buf *bytes.Buffer, blocks []Block) {
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, b := range blocks {
		switch b.Type {
		case "list-item":
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		case "o-list-item":
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		}

		flushList()
		flushOrderedList()

		switch b.Type {
		case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
			tag := "h" + b.Type[len("heading"):]
			writeTag(buf, tag, b.Label, FormatSpans(b.Text, b.Spans))
		case "paragraph":
			writeTag(buf, "p", b.Label, FormatSpans(b.Text, b.Spans))
		case "preformatted":
			writeTag(buf, "pre", b.Label, FormatSpans(b.Text, b.Spans))
		case "image":
			buf.WriteString(`<p class="block-img"><img src="`)
			buf.WriteString(html.EscapeString(string(templ.URL(b.URL))))
			buf.WriteString(`" alt="`)
			buf.WriteString(html.EscapeString(b.Alt))
			buf.WriteString(`"`)
			if b.Dimensions != nil {
				buf.WriteString(` width="` + strconv.Itoa(b.Dimensions.Width) + `"`)
				buf.WriteString(` height="` + strconv.Itoa(b.Dimensions.Height) + `"`)
			}
			buf.WriteString(` loading="lazy" /></p>`)
		case "embed":
			if b.Oembed == nil {
				continue
			}
			buf.WriteString(`<div data-oembed="`)
			buf.WriteString(html.EscapeString(b.Oembed.EmbedURL))
			buf.WriteString(`" data-oembed-type="`)
			buf.WriteString(html.EscapeString(b.Oembed.Type))
			buf.WriteString(`">`)
			buf.WriteString(b.Oembed.HTML)
			buf.WriteString(`</div>`)
		default:
			// Unknown block types still show their text.
			if b.Text != "" {
				writeTag(buf, "p", b.Label, FormatSpans(b.Text, b.Spans))
			}
		}
	}
	flushList()
	flushOrderedList()
}

func writeTag(buf *bytes.Buffer, tag, class, inner string) {
	buf.WriteString("<" + tag)
	if class != "" {
		buf.WriteString(` class="` + html.EscapeString(class) + `"`)
	}
	buf.WriteString(">")
	buf.WriteString(inner)
	buf.WriteString("</" + tag + ">")
}

// FormatSpans escapes text and applies spans. A span that overlaps an
// enclosing one is closed and reopened at the boundary so the markup nests.
func FormatSpans(text string, spans []Span) string {
	runes := []rune(text)
	if len(spans) == 0 {
		return escapeText(string(runes))
	}

	ordered := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End {
			continue
		}
		ordered = append(ordered, s)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})

	boundaries := map[int]struct{}{0: {}, len(runes): {}}
	for _, s := range ordered {
		boundaries[s.Start] = struct{}{}
		boundaries[s.End] = struct{}{}
	}
	cuts := make([]int, 0, len(boundaries))
	for b := range boundaries {
		cuts = append(cuts, b)
	}
	sort.Ints(cuts)

	var b strings.Builder
	var open []Span
	for i := 0; i+1 < len(cuts); i++ {
		from, to := cuts[i], cuts[i+1]
		var active []Span
		for _, s := range ordered {
			if s.Start <= from && s.End >= to {
				active = append(active, s)
			}
		}
		keep := 0
		for keep < len(open) && keep < len(active) && open[keep] == active[keep] {
			keep++
		}
		for j := len(open) - 1; j >= keep; j-- {
			b.WriteString(closeTag(open[j]))
		}
		for _, s := range active[keep:] {
			b.WriteString(openTag(s))
		}
		open = active
		b.WriteString(escapeText(string(runes[from:to])))
	}
	for j := len(open) - 1; j >= 0; j-- {
		b.WriteString(closeTag(open[j]))
	}
	return b.String()
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br />")
}

func openTag(s Span) string {
	switch s.Type {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "hyperlink":
		href, target := linkTarget(s.Data)
		out := `<a href="` + html.EscapeString(href) + `"`
		if target != "" {
			out += ` target="` + html.EscapeString(target) + `" rel="noopener noreferrer"`
		}
		return out + ">"
	case "label":
		label := ""
		if s.Data != nil {
			label = s.Data.Label
		}
		return `<span class="` + html.EscapeString(label) + `">`
	default:
		return "<span>"
	}
}

func closeTag(s Span) string {
	switch s.Type {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	default:
		return "</span>"
	}
}

func linkTarget(d *SpanData) (href, target string) {
	if d == nil {
		return "#", ""
	}
	if d.LinkType == "Document" {
		return DocumentLink(*d), ""
	}
	return string(templ.URL(d.URL)), d.Target
}
