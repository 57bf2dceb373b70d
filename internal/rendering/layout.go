package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// PageParams describes the fixed page geometry in millimetres and points.
type PageParams struct {
	Width        float64 `json:"width" yaml:"width" validate:"gt=0"`
	Height       float64 `json:"height" yaml:"height" validate:"gt=0"`
	Margin       float64 `json:"margin" yaml:"margin" validate:"gte=0"`
	FooterMargin float64 `json:"footer_margin" yaml:"footer_margin" validate:"gte=0"`

	// LineHeight is the nominal distance between content lines.
	LineHeight float64 `json:"line_height" yaml:"line_height" validate:"gt=0"`
	// BalancedLineHeight replaces LineHeight when the content slightly overflows one page.
	BalancedLineHeight float64 `json:"balanced_line_height" yaml:"balanced_line_height" validate:"gt=0"`
	// BalanceFactor bounds "slightly": the estimate must stay under BalanceFactor × Height.
	BalanceFactor float64 `json:"balance_factor" yaml:"balance_factor" validate:"gte=0"`

	// KeepWithTitle is the space a title needs below it for its rule and first line.
	KeepWithTitle float64 `json:"keep_with_title" yaml:"keep_with_title" validate:"gte=0"`
	RuleOffset    float64 `json:"rule_offset" yaml:"rule_offset" validate:"gte=0"`
	TitleAdvance  float64 `json:"title_advance" yaml:"title_advance" validate:"gte=0"`
	SectionGap    float64 `json:"section_gap" yaml:"section_gap" validate:"gte=0"`

	TitleFontSize float64 `json:"title_font_size" yaml:"title_font_size" validate:"gt=0"`
	BodyFontSize  float64 `json:"body_font_size" yaml:"body_font_size" validate:"gt=0"`
}

// DefaultPageParams returns A4 portrait with 15mm margins.
func DefaultPageParams() PageParams {
	return PageParams{
		Width:              210,
		Height:             297,
		Margin:             15,
		FooterMargin:       15,
		LineHeight:         5,
		BalancedLineHeight: 6,
		BalanceFactor:      1.3,
		KeepWithTitle:      15,
		RuleOffset:         1.5,
		TitleAdvance:       5,
		SectionGap:         4,
		TitleFontSize:      11,
		BodyFontSize:       9.5,
	}
}

// LetterPageParams returns US Letter portrait with the default spacing.
func LetterPageParams() PageParams {
	p := DefaultPageParams()
	p.Width = 215.9
	p.Height = 279.4
	return p
}

// Check reports geometry that cannot hold a single line of content.
func (p PageParams) Check() error {
	if p.Width <= 2*p.Margin {
		return fmt.Errorf("page width %.1f leaves no room inside %.1f margins", p.Width, p.Margin)
	}
	if p.Margin+p.KeepWithTitle > p.Height-p.FooterMargin {
		return fmt.Errorf("page height %.1f cannot fit a section title", p.Height)
	}
	if p.LineHeight <= 0 || p.BalancedLineHeight <= 0 {
		return fmt.Errorf("line heights must be positive")
	}
	return nil
}

// ContentWidth is the usable line width.
func (p PageParams) ContentWidth() float64 {
	return p.Width - 2*p.Margin
}

// bottom is the lowest y a content line may start at.
func (p PageParams) bottom() float64 {
	return p.Height - p.FooterMargin
}

// Measurer returns the rendered width of body text.
type Measurer interface {
	TextWidth(text string) float64
}

// ItemKind identifies what a layout item draws.
type ItemKind int

const (
	// ItemTitle is an upper-cased section title
	ItemTitle ItemKind = iota
	// ItemRule is the horizontal rule under a title
	ItemRule
	// ItemLine is one wrapped line of section content
	ItemLine
)

// Item is one positioned element on a page. Y is the baseline (or rule) position.
type Item struct {
	Kind      ItemKind
	SectionID string
	Text      string
	Y         float64
}

// Page holds the items drawn on one page in drawing order.
type Page struct {
	Items []Item
}

// Layout is the result of paginating a section set.
type Layout struct {
	Params PageParams
	// Spacing is the line spacing actually used.
	Spacing float64
	// Balanced is true when Spacing was raised to reduce a near-empty trailing page.
	Balanced bool
	// EstimatedHeight is the nominal height used for the balancing decision.
	EstimatedHeight float64
	Pages           []Page
}

// Paginate lays out set on fixed pages. It is pure: the same sections, params
// and measurer always produce the same layout. An empty set yields one empty page.
func Paginate(set []types.Section, p PageParams, m Measurer) Layout {
	width := p.ContentWidth()

	wrapped := make([][]string, len(set))
	totalLines := 0
	for i, s := range set {
		wrapped[i] = WrapText(s.Content, width, m)
		// title and rule, content, trailing gap
		totalLines += 2 + len(wrapped[i]) + 1
	}

	estimated := float64(totalLines) * p.LineHeight
	multiPage := estimated > p.bottom()-p.Margin
	layout := Layout{
		Params:          p,
		Spacing:         p.LineHeight,
		EstimatedHeight: estimated,
		Pages:           []Page{{}},
	}
	if multiPage && estimated < p.Height*p.BalanceFactor {
		layout.Spacing = p.BalancedLineHeight
		layout.Balanced = true
	}

	current := &layout.Pages[0]
	newPage := func() {
		layout.Pages = append(layout.Pages, Page{})
		current = &layout.Pages[len(layout.Pages)-1]
	}

	y := p.Margin
	for i, s := range set {
		if y+p.KeepWithTitle > p.bottom() {
			newPage()
			y = p.Margin
		}

		current.Items = append(current.Items, Item{Kind: ItemTitle, SectionID: s.ID, Text: strings.ToUpper(s.Title), Y: y})
		y += p.RuleOffset
		current.Items = append(current.Items, Item{Kind: ItemRule, SectionID: s.ID, Y: y})
		y += p.TitleAdvance

		for _, line := range wrapped[i] {
			// Sections split across pages; the title is not repeated.
			if y > p.bottom() {
				newPage()
				y = p.Margin
			}
			current.Items = append(current.Items, Item{Kind: ItemLine, SectionID: s.ID, Text: line, Y: y})
			y += layout.Spacing
		}

		y += p.SectionGap
	}
	return layout
}

// WrapText breaks content into lines no wider than width. Explicit line breaks
// are kept, blank lines stay blank, and words wider than a line are split.
func WrapText(content string, width float64, m Measurer) []string {
	var out []string
	for _, raw := range types.ContentLines(content) {
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if m.TextWidth(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			for m.TextWidth(word) > width {
				head, tail := splitWord(word, width, m)
				out = append(out, head)
				word = tail
			}
			line = word
		}
		out = append(out, line)
	}
	return out
}

// splitWord returns the longest prefix of word that fits width (at least one rune).
func splitWord(word string, width float64, m Measurer) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && m.TextWidth(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
