package telegram

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"gourmet-guide/internal/planner"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDays is used when a message does not say how many days to plan.
const DefaultDays = 7

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

var ErrBadRequest = errors.New("expected \"ingredients | days\"")

// ParseRequest reads "ingredients | days". The day count is optional.
func ParseRequest(text string) (planner.Request, error) {
	ingredients, days := text, DefaultDays
	if i := strings.LastIndex(text, "|"); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(text[i+1:]))
		if err != nil || n < 1 {
			return planner.Request{}, ErrBadRequest
		}
		ingredients, days = text[:i], n
	}

	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return planner.Request{}, ErrBadRequest
	}
	return planner.Request{Ingredients: ingredients, Days: days}, nil
}

// FormatHTML converts a sanitized plan fragment into the HTML subset
// Telegram accepts: headings become bold lines and list items bullets.
func FormatHTML(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse plan html: %w", err)
	}

	var b strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2", "h3":
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(strings.TrimSpace(s.Text())))
		case "ul":
			s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				fmt.Fprintf(&b, "• %s\n", inline(li))
			})
		case "p":
			fmt.Fprintf(&b, "%s\n", inline(s))
		default:
			if text := strings.TrimSpace(s.Text()); text != "" {
				fmt.Fprintf(&b, "%s\n", html.EscapeString(text))
			}
		}
	})
	return strings.TrimSpace(b.String()), nil
}

func inline(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		text := html.EscapeString(c.Text())
		if goquery.NodeName(c) == "strong" {
			text = "<b>" + text + "</b>"
		}
		b.WriteString(text)
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// splitMessage cuts text at line breaks into chunks Telegram will accept.
// A line longer than limit is cut by lineCut, so no tag or entity is split.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut, next := lineCut(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[next:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n")
		}
		cur.WriteString(line)
	}
	if strings.TrimSpace(cur.String()) != "" {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// lineCut picks where to break an over-long line: the last space outside any
// element, else the last point outside a tag or entity, else the last rune
// start. The first part is line[:cut], the rest starts at line[next:].
func lineCut(line string, limit int) (cut, next int) {
	var space, safe, depth int
	for i := 0; i < limit; {
		n := 1
		switch c := line[i]; {
		case c == '<':
			if end := strings.IndexByte(line[i:], '>'); end > 0 {
				n = end + 1
				if strings.HasPrefix(line[i:], "</") {
					depth--
				} else {
					depth++
				}
			}
		case c == '&':
			if end := strings.IndexByte(line[i:], ';'); end > 0 {
				n = end + 1
			}
		case c == ' ' && depth <= 0:
			space = i
		case c >= utf8.RuneSelf:
			_, n = utf8.DecodeRuneInString(line[i:])
		}
		if i+n > limit {
			break
		}
		i += n
		safe = i
	}

	switch {
	case space > 0:
		return space, space + 1
	case safe > 0:
		return safe, safe
	}
	cut = limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return cut, cut
}
