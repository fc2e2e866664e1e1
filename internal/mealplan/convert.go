package mealplan

import (
	"bufio"
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// NodeKind is the kind of a converted markup block.
type NodeKind int

const (
	NodeHeading NodeKind = iota + 1
	NodeList
	NodeParagraph
)

// Node is one top-level block of converted markup, reduced to plain text.
type Node struct {
	Kind  NodeKind
	Level int      // headings only
	Text  string   // headings and paragraphs
	Items []string // lists only, one entry per list item
}

// Converter turns lightweight markup into a flat block tree.
type Converter interface {
	Convert(source []byte) []Node
}

// MarkdownConverter is the goldmark-backed Converter.
type MarkdownConverter struct {
	md goldmark.Markdown
}

// NewMarkdownConverter creates a CommonMark converter.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{md: goldmark.New()}
}

// Convert parses source and flattens its top-level blocks.
func (c *MarkdownConverter) Convert(source []byte) []Node {
	doc := c.md.Parser().Parse(text.NewReader(source))
	var nodes []Node
	c.collect(doc, source, &nodes)
	return nodes
}

func (c *MarkdownConverter) collect(parent ast.Node, source []byte, nodes *[]Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			*nodes = append(*nodes, Node{Kind: NodeHeading, Level: node.Level, Text: inlineText(node, source)})
		case *ast.List:
			list := Node{Kind: NodeList}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				list.Items = append(list.Items, inlineText(item, source))
			}
			*nodes = append(*nodes, list)
		case *ast.Paragraph, *ast.TextBlock:
			*nodes = append(*nodes, Node{Kind: NodeParagraph, Text: inlineText(node, source)})
		case *ast.Blockquote:
			c.collect(node, source, nodes)
		case *ast.FencedCodeBlock:
			// Models sometimes wrap the whole plan in a ```markdown fence.
			lang := strings.ToLower(string(node.Language(source)))
			if lang == "" || lang == "markdown" || lang == "md" {
				*nodes = append(*nodes, c.Convert(blockLines(node, source))...)
			}
		}
	}
}

func blockLines(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// decodeText resolves backslash escapes and character references the same way
// goldmark's HTML renderer does, then undoes the HTML escaping.
func decodeText(segment []byte) string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	gmhtml.DefaultWriter.Write(w, segment)
	_ = w.Flush()
	return html.UnescapeString(buf.String())
}

// inlineText concatenates the text under n, dropping emphasis markers and raw HTML.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock && node != n && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if t.IsRaw() {
				sb.Write(t.Segment.Value(source))
			} else {
				sb.WriteString(decodeText(t.Segment.Value(source)))
			}
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
