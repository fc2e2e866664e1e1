package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Check(t *testing.T) {
	full := []Item{{"Breakfast", "a"}, {"Lunch", "b"}, {"Dinner", "c"}}

	tests := []struct {
		name     string
		doc      Document
		days     int
		problems int
	}{
		{
			name: "Complete",
			doc: Document{Blocks: []Block{
				{Kind: BlockTitle, Text: "1-Day Meal Plan"},
				{Kind: BlockDayHeading, Text: "Day 1"},
				{Kind: BlockItemList, Items: full},
			}},
			days: 1,
		},
		{
			name: "MissingDay",
			doc: Document{Blocks: []Block{
				{Kind: BlockDayHeading, Text: "Day 1"},
				{Kind: BlockItemList, Items: full},
			}},
			days:     2,
			problems: 1,
		},
		{
			name: "WrongOrder",
			doc: Document{Blocks: []Block{
				{Kind: BlockDayHeading, Text: "Day 1"},
				{Kind: BlockItemList, Items: []Item{{"Lunch", "b"}, {"Breakfast", "a"}, {"Dinner", "c"}}},
			}},
			days:     1,
			problems: 2,
		},
		{
			name:     "Rejected",
			doc:      Document{Blocks: []Block{{Kind: BlockParagraph, Text: Sentinel}}, Rejected: true},
			days:     4,
			problems: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.doc.Check(tt.days), tt.problems)
		})
	}
}

func TestBlockKind_String(t *testing.T) {
	assert.Equal(t, "title", BlockTitle.String())
	assert.Equal(t, "items", BlockItemList.String())
	assert.Equal(t, "BlockKind(42)", BlockKind(42).String())
}
