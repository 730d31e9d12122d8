package categorize

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
)

const (
	maxSuggestions      = 3
	maxFuzzySuggestions = 5

	// DefaultFuzzyThreshold is the minimum similarity fuzzy suggestions keep.
	DefaultFuzzyThreshold = 0.6
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Suggestion struct {
	Category   string     `json:"category"`
	Score      int        `json:"score"`
	Matches    []string   `json:"matches"`
	Confidence Confidence `json:"confidence"`
}

// Suggest ranks the categories whose keywords appear in description. The
// score rewards both the number and the length of matched keywords.
func (e *Engine) Suggest(description string) []Suggestion {
	text := fold.Upper(strings.TrimSpace(description))
	if text == "" {
		return []Suggestion{}
	}

	var out []Suggestion

	for i, r := range e.dict {
		var matches []string

		score := 0

		for j, kw := range e.folded[i] {
			if kw == "" || !strings.Contains(text, kw) {
				continue
			}

			matches = append(matches, r.Keywords[j])
			score += 10 + utf8.RuneCountInString(kw)
		}

		if len(matches) == 0 {
			continue
		}

		confidence := ConfidenceMedium
		if len(matches) > 1 {
			confidence = ConfidenceHigh
		}

		out = append(out, Suggestion{
			Category:   r.Category,
			Score:      score,
			Matches:    matches,
			Confidence: confidence,
		})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	if out == nil {
		return []Suggestion{}
	}

	return out
}

type FuzzySuggestion struct {
	Category   string     `json:"category"`
	Keyword    string     `json:"keyword"`
	Token      string     `json:"token"`
	Similarity float64    `json:"similarity"`
	Confidence Confidence `json:"confidence"`
}

// FuzzySuggest compares every word of description with every keyword by edit
// distance and keeps, per category, the closest pair at or above threshold.
// A non-positive threshold uses DefaultFuzzyThreshold.
func (e *Engine) FuzzySuggest(description string, threshold float64) []FuzzySuggestion {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	tokens := strings.Fields(fold.Upper(description))
	if len(tokens) == 0 {
		return []FuzzySuggestion{}
	}

	best := make(map[string]int)

	var out []FuzzySuggestion

	for i, r := range e.dict {
		for j, kw := range e.folded[i] {
			for _, tok := range tokens {
				sim := Similarity(tok, kw)
				if sim < threshold {
					continue
				}

				s := FuzzySuggestion{
					Category:   r.Category,
					Keyword:    r.Keywords[j],
					Token:      tok,
					Similarity: sim,
					Confidence: ConfidenceMedium,
				}
				if sim < 0.8 {
					s.Confidence = ConfidenceLow
				}

				idx, seen := best[r.Category]
				if !seen {
					best[r.Category] = len(out)
					out = append(out, s)

					continue
				}

				if sim > out[idx].Similarity {
					out[idx] = s
				}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b FuzzySuggestion) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(out) > maxFuzzySuggestions {
		out = out[:maxFuzzySuggestions]
	}

	if out == nil {
		return []FuzzySuggestion{}
	}

	return out
}

// Similarity returns 1 - distance/maxLen over runes, in [0, 1].
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)

	longest := max(la, lb)
	if longest == 0 {
		return 1
	}

	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// RuleSummary describes one rule of the effective dictionary.
type RuleSummary struct {
	Category      string   `json:"category"`
	Keywords      []string `json:"keywords"`
	Description   string   `json:"description"`
	TotalKeywords int      `json:"total_keywords"`
	Editable      bool     `json:"editable"`
}

const summaryPreview = 5

func (e *Engine) Rules() []RuleSummary {
	out := make([]RuleSummary, 0, len(e.dict))

	for _, r := range e.dict {
		preview := r.Keywords
		suffix := ""

		if len(preview) > summaryPreview {
			preview = preview[:summaryPreview]
			suffix = "..."
		}

		out = append(out, RuleSummary{
			Category:      r.Category,
			Keywords:      append([]string(nil), r.Keywords...),
			Description:   fmt.Sprintf("Si el detalle contiene alguna de estas palabras: %s%s", strings.Join(preview, ", "), suffix),
			TotalKeywords: len(r.Keywords),
			Editable:      r.Custom,
		})
	}

	return out
}
