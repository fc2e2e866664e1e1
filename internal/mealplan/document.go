package mealplan

import "fmt"

// BlockKind tells the renderer and the exporter how to lay a block out.
type BlockKind int

const (
	BlockTitle BlockKind = iota + 1
	BlockDayHeading
	BlockItemList
	BlockParagraph
)

func (k BlockKind) String() string {
	switch k {
	case BlockTitle:
		return "title"
	case BlockDayHeading:
		return "day"
	case BlockItemList:
		return "items"
	case BlockParagraph:
		return "paragraph"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// Item is one labelled list entry, e.g. {"Lunch", "Chicken salad - 450 calories"}.
// The calorie estimate stays inside Text.
type Item struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Block is one structural unit of a parsed plan. Text is set for titles,
// day headings and paragraphs; Items only for item lists.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Items []Item    `json:"items,omitempty"`
}

// Document is the ordered block sequence derived from one reply.
type Document struct {
	Blocks []Block `json:"blocks"`
	// Rejected is set when the reply carried the out-of-domain sentinel.
	Rejected bool `json:"rejected,omitempty"`
}

// Day groups the items listed under a single day heading.
type Day struct {
	Heading string
	Items   []Item
}

// Title returns the text of the title block, if any.
func (d Document) Title() string {
	for _, b := range d.Blocks {
		if b.Kind == BlockTitle {
			return b.Text
		}
	}
	return ""
}

// Days groups item lists under the day heading that precedes them.
// Lists that appear before the first day heading belong to no day.
func (d Document) Days() []Day {
	var days []Day
	for _, b := range d.Blocks {
		switch b.Kind {
		case BlockDayHeading:
			days = append(days, Day{Heading: b.Text})
		case BlockItemList:
			if len(days) > 0 {
				last := &days[len(days)-1]
				last.Items = append(last.Items, b.Items...)
			}
		}
	}
	return days
}

// MealLabels are the labels every day carries, in order.
var MealLabels = []string{"Breakfast", "Lunch", "Dinner"}

// Check compares the document against the requested day count and the meal
// grammar. It only reports; rendering stays best-effort whatever it finds.
func (d Document) Check(dayCount int) []string {
	if d.Rejected {
		return nil
	}

	var problems []string
	days := d.Days()
	if len(days) != dayCount {
		problems = append(problems, fmt.Sprintf("expected %d days, found %d", dayCount, len(days)))
	}
	for _, day := range days {
		if len(day.Items) != len(MealLabels) {
			problems = append(problems, fmt.Sprintf("%s: expected %d meals, found %d", day.Heading, len(MealLabels), len(day.Items)))
			continue
		}
		for i, item := range day.Items {
			if item.Label != MealLabels[i] {
				problems = append(problems, fmt.Sprintf("%s: meal %d labelled %q, expected %q", day.Heading, i+1, item.Label, MealLabels[i]))
			}
		}
	}
	return problems
}
