package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inName   string
		inQty    string
		wantName string
		wantQty  string
	}{
		{
			name:     "article a becomes 1",
			inName:   "tomato",
			inQty:    "a slice",
			wantName: "tomato",
			wantQty:  "1 slice",
		},
		{
			name:     "article an becomes 1",
			inName:   "apple",
			inQty:    "an apple",
			wantName: "apple",
			wantQty:  "1 apple",
		},
		{
			name:     "bare article becomes 1",
			inName:   "egg",
			inQty:    "a",
			wantName: "egg",
			wantQty:  "1",
		},
		{
			name:     "article rule is case-insensitive and lowercases the rest",
			inName:   "tomato",
			inQty:    "A Slice",
			wantName: "tomato",
			wantQty:  "1 slice",
		},
		{
			name:     "half with noun matching the name keeps the name",
			inName:   "avocado",
			inQty:    "half an avocado",
			wantName: "avocado",
			wantQty:  "1/2",
		},
		{
			name:     "half with unrelated noun keeps noun in quantity",
			inName:   "toast",
			inQty:    "half a slice of toast",
			wantName: "toast",
			wantQty:  "1/2 slice",
		},
		{
			name:     "half with noun that is a substring of the name renames",
			inName:   "avocado salad",
			inQty:    "half an avocado",
			wantName: "avocado",
			wantQty:  "1/2",
		},
		{
			name:     "quarter becomes 1/4",
			inName:   "lime",
			inQty:    "quarter the lime",
			wantName: "lime",
			wantQty:  "1/4",
		},
		{
			name:     "bare half becomes 1/2",
			inName:   "onion",
			inQty:    "half",
			wantName: "onion",
			wantQty:  "1/2",
		},
		{
			name:     "half takes precedence over quarter",
			inName:   "lemon",
			inQty:    "half a lemon quarter",
			wantName: "lemon",
			wantQty:  "1/2",
		},
		{
			name:     "numeric quantity passes through unchanged",
			inName:   "tomato",
			inQty:    "2 slices",
			wantName: "tomato",
			wantQty:  "2 slices",
		},
		{
			name:     "empty quantity stays empty",
			inName:   "salt",
			inQty:    "",
			wantName: "salt",
			wantQty:  "",
		},
		{
			name:     "whitespace is trimmed",
			inName:   "  butter  ",
			inQty:    "  2 tbsp  ",
			wantName: "butter",
			wantQty:  "2 tbsp",
		},
		{
			name:     "word starting with a is not an article",
			inName:   "milk",
			inQty:    "about 1 cup",
			wantName: "milk",
			wantQty:  "about 1 cup",
		},
		{
			name:     "untouched quantity keeps its case",
			inName:   "cheese",
			inQty:    "Two Slices",
			wantName: "cheese",
			wantQty:  "Two Slices",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotName, gotQty := NormalizePair(tc.inName, tc.inQty)
			assert.Equal(t, tc.wantName, gotName)
			assert.Equal(t, tc.wantQty, gotQty)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses internal whitespace",
			input: "a  burger \n with\tlettuce",
			want:  "a burger with lettuce",
		},
		{
			name:  "trims leading and trailing whitespace",
			input: "  two eggs  ",
			want:  "two eggs",
		},
		{
			name:  "nfkc folds fullwidth characters",
			input: "２ slices",
			want:  "2 slices",
		},
		{
			name:  "empty input stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, normalizeText(tc.input))
		})
	}
}
