package rendering

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// monoMeasurer gives every rune the same width.
type monoMeasurer float64

func (m monoMeasurer) TextWidth(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * float64(m)
}

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func itemsOf(page Page, kind ItemKind) []Item {
	var out []Item
	for _, item := range page.Items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

func TestPaginate_EmptySetIsOneEmptyPage(t *testing.T) {
	layout := Paginate(nil, DefaultPageParams(), monoMeasurer(2))

	require.Len(t, layout.Pages, 1)
	assert.Empty(t, layout.Pages[0].Items)
	assert.False(t, layout.Balanced)
}

func TestPaginate_SingleSection(t *testing.T) {
	layout := Paginate([]types.Section{{ID: "a", Title: "Experience", Content: "Did work"}}, DefaultPageParams(), monoMeasurer(2))

	require.Len(t, layout.Pages, 1)
	assert.Equal(t, []Item{
		{Kind: ItemTitle, SectionID: "a", Text: "EXPERIENCE", Y: 15},
		{Kind: ItemRule, SectionID: "a", Y: 16.5},
		{Kind: ItemLine, SectionID: "a", Text: "Did work", Y: 21.5},
	}, layout.Pages[0].Items)
	assert.Equal(t, 5.0, layout.Spacing)
}

func TestPaginate_Balancing(t *testing.T) {
	tests := []struct {
		name     string
		lines    int
		balanced bool
		spacing  float64
	}{
		// (2 + lines + 1) * 5 against 267 usable and 386.1 balance limit
		{"fits on one page", 40, false, 5},
		{"slightly over one page", 60, true, 6},
		{"well over one page", 80, false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := []types.Section{{ID: "a", Title: "Experience", Content: numberedLines(tt.lines)}}
			layout := Paginate(set, DefaultPageParams(), monoMeasurer(2))

			assert.Equal(t, tt.balanced, layout.Balanced)
			assert.Equal(t, tt.spacing, layout.Spacing)
			assert.Equal(t, float64(tt.lines+3)*5, layout.EstimatedHeight)
		})
	}
}

func TestPaginate_BalancingUsesFooterMargin(t *testing.T) {
	p := DefaultPageParams()
	p.Margin = 10
	p.FooterMargin = 40

	// 51 lines * 5 = 255: past the 247 usable height, under the 277 a
	// symmetric margin would give.
	set := []types.Section{{ID: "a", Title: "Experience", Content: numberedLines(48)}}
	layout := Paginate(set, p, monoMeasurer(2))

	assert.Equal(t, 255.0, layout.EstimatedHeight)
	assert.True(t, layout.Balanced)
	assert.Equal(t, 6.0, layout.Spacing)
}

func TestPaginate_SplitsSectionWithoutRepeatingTitle(t *testing.T) {
	set := []types.Section{{ID: "a", Title: "Experience", Content: numberedLines(60)}}
	layout := Paginate(set, DefaultPageParams(), monoMeasurer(2))

	require.Len(t, layout.Pages, 2)
	first := itemsOf(layout.Pages[0], ItemLine)
	second := layout.Pages[1].Items

	// Lines at 21.5 + 6k stay on page one while y <= 282.
	assert.Len(t, first, 44)
	assert.Equal(t, "line 44", first[43].Text)
	assert.Len(t, second, 16)
	assert.Empty(t, itemsOf(layout.Pages[1], ItemTitle))
	assert.Equal(t, 15.0, second[0].Y)
	assert.Equal(t, "line 45", second[0].Text)
}

func TestPaginate_TitleNeedsRoomForFirstLine(t *testing.T) {
	params := DefaultPageParams()
	params.BalanceFactor = 0

	tests := []struct {
		name      string
		lines     int
		newPage   bool
		titleOnY  float64
		pageCount int
	}{
		// after n lines y = 25.5 + 5n; a title needs y + 15 <= 282
		{"title fits", 45, false, 250.5, 1},
		{"title moves to next page", 49, true, 15, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := []types.Section{
				{ID: "a", Title: "Experience", Content: numberedLines(tt.lines)},
				{ID: "b", Title: "Skills", Content: "Go"},
			}
			layout := Paginate(set, params, monoMeasurer(2))

			require.Len(t, layout.Pages, tt.pageCount)
			last := layout.Pages[len(layout.Pages)-1]
			titles := itemsOf(last, ItemTitle)
			require.NotEmpty(t, titles)
			skills := titles[len(titles)-1]
			assert.Equal(t, "SKILLS", skills.Text)
			assert.Equal(t, tt.titleOnY, skills.Y)
		})
	}
}

func TestPaginate_IsPure(t *testing.T) {
	set := []types.Section{
		{ID: "a", Title: "Experience", Content: numberedLines(70)},
		{ID: "b", Title: "Education", Content: "BSc\n\nMSc"},
	}
	before := types.SectionSet(set).Clone()

	first := Paginate(set, DefaultPageParams(), monoMeasurer(2))
	second := Paginate(set, DefaultPageParams(), monoMeasurer(2))

	assert.Equal(t, first, second)
	assert.Equal(t, before, types.SectionSet(set))
}

func TestWrapText(t *testing.T) {
	m := monoMeasurer(2)

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"short", "Go", []string{"Go"}},
		{"wraps on words", "aaaa bbbb cccc", []string{"aaaa bbbb", "cccc"}},
		{"splits long words", "abcdefghijklmnopqrstuvwxy", []string{"abcdefghij", "klmnopqrst", "uvwxy"}},
		{"keeps blank lines", "a\n\nb", []string{"a", "", "b"}},
		{"collapses spacing", "  a   b  ", []string{"a b"}},
		{"empty content", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.content, 20, m))
		})
	}
}

func TestPageParams_Check(t *testing.T) {
	assert.NoError(t, DefaultPageParams().Check())
	assert.NoError(t, LetterPageParams().Check())

	narrow := DefaultPageParams()
	narrow.Width = 20
	assert.Error(t, narrow.Check())

	short := DefaultPageParams()
	short.Height = 40
	assert.Error(t, short.Check())
}
