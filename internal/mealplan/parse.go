package mealplan

import (
	"regexp"
	"strings"
)

// Sentinel is the reply the model is told to give for out-of-domain requests.
const Sentinel = "Error: Invalid Request"

// DefaultTitle is used when a plan arrives without a title heading.
const DefaultTitle = "Gourmet Guide Meal Plan"

var dayHeading = regexp.MustCompile(`(?i)^day(\b|\d)`)

// Parser builds Documents from raw replies with a pluggable Converter.
type Parser struct {
	Converter Converter
}

var defaultParser = Parser{Converter: NewMarkdownConverter()}

// Parse converts a raw reply with the markdown converter.
func Parse(raw string) Document {
	return defaultParser.Parse(raw)
}

// IsRejection reports whether raw carries the out-of-domain sentinel.
func IsRejection(raw string) bool {
	return strings.Contains(raw, Sentinel)
}

// Parse never fails: whatever structure can be recovered from raw is kept.
func (p Parser) Parse(raw string) Document {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Document{}
	}
	if IsRejection(trimmed) {
		return Document{
			Blocks:   []Block{{Kind: BlockParagraph, Text: trimmed}},
			Rejected: true,
		}
	}

	conv := p.Converter
	if conv == nil {
		conv = defaultParser.Converter
	}
	return build(conv.Convert([]byte(raw)))
}

// build is the second pass: classify headings, split list items into
// label and text, and put the title first.
func build(nodes []Node) Document {
	var (
		title    string
		seenDay  bool
		body     []Block
		hasTitle bool
	)

	for _, n := range nodes {
		switch n.Kind {
		case NodeHeading:
			if n.Text == "" {
				continue
			}
			if dayHeading.MatchString(n.Text) {
				seenDay = true
				body = append(body, Block{Kind: BlockDayHeading, Text: n.Text})
				continue
			}
			if !hasTitle && !seenDay {
				title, hasTitle = n.Text, true
				continue
			}
			body = append(body, Block{Kind: BlockParagraph, Text: n.Text})
		case NodeList:
			items := make([]Item, 0, len(n.Items))
			for _, it := range n.Items {
				if it = strings.TrimSpace(it); it != "" {
					items = append(items, splitItem(it))
				}
			}
			if len(items) > 0 {
				body = append(body, Block{Kind: BlockItemList, Items: items})
			}
		case NodeParagraph:
			if n.Text != "" {
				body = append(body, Block{Kind: BlockParagraph, Text: n.Text})
			}
		}
	}

	if !hasTitle {
		if len(body) == 0 {
			return Document{}
		}
		title = DefaultTitle
	}
	return Document{Blocks: append([]Block{{Kind: BlockTitle, Text: title}}, body...)}
}

// splitItem cuts at the first colon; an item without one has no label.
func splitItem(s string) Item {
	label, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Item{Text: s}
	}
	return Item{Label: strings.TrimSpace(label), Text: strings.TrimSpace(rest)}
}
