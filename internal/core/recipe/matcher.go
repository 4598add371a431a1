package recipe

import (
	"sort"
	"strings"

	"recipe-finder/internal/core/catalog"
)

// DefaultMinResults 結果不足時補足的最少顯示數量
const DefaultMinResults = 4

// Resolver 將食材 ID 轉為顯示名稱
type Resolver interface {
	Resolve(id string) string
}

// Matcher 依使用者選取的食材篩選並排序食譜
type Matcher struct {
	// MinResults 為 0 時不補足
	MinResults int
}

// NewMatcher 創建比對器
func NewMatcher(minResults int) *Matcher {
	if minResults < 0 {
		minResults = 0
	}
	return &Matcher{MinResults: minResults}
}

// Terms 將選取的 ID 轉為小寫顯示名稱，空白項目略過
func Terms(selectedIDs []string, resolver Resolver) []string {
	terms := make([]string, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		if t := strings.TrimSpace(catalog.Lower(resolver.Resolve(id))); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Matches 雙向子字串比對：任一方包含另一方即視為命中
func Matches(ingredient, term string) bool {
	if ingredient == "" || term == "" {
		return false
	}
	return strings.Contains(ingredient, term) || strings.Contains(term, ingredient)
}

// Count 計算有多少選取項目命中食譜的任一食材
func Count(ingredients []string, terms []string) int {
	lowered := lowerAll(ingredients)
	count := 0
	for _, term := range terms {
		for _, ing := range lowered {
			if Matches(ing, term) {
				count++
				break
			}
		}
	}
	return count
}

// Highlight 標記每一行食材是否命中任一選取項目
func Highlight(ingredients []string, terms []string) []bool {
	marks := make([]bool, len(ingredients))
	for i, ing := range lowerAll(ingredients) {
		for _, term := range terms {
			if Matches(ing, term) {
				marks[i] = true
				break
			}
		}
	}
	return marks
}

// Match 篩選至少命中一項的食譜，依命中數遞減穩定排序；
// 數量不足 MinResults 時依原順序補上未命中的食譜並標記 Backfilled。
// 未選取任何食材時原樣回傳。
func (m *Matcher) Match(recipes []Recipe, selectedIDs []string, resolver Resolver) []Match {
	if len(selectedIDs) == 0 {
		return PassThrough(recipes)
	}

	terms := Terms(selectedIDs, resolver)
	matched := make([]Match, 0, len(recipes))
	var rest []Match
	for i, r := range recipes {
		n := Count(r.Ingredients, terms)
		entry := Match{
			Recipe:     r,
			Index:      i,
			Count:      n,
			Highlights: Highlight(r.Ingredients, terms),
		}
		if n >= 1 {
			matched = append(matched, entry)
		} else {
			rest = append(rest, entry)
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Count > matched[b].Count
	})

	for _, entry := range rest {
		if len(matched) >= m.MinResults {
			break
		}
		entry.Backfilled = true
		matched = append(matched, entry)
	}

	return matched
}

// PassThrough 不做篩選，保留原順序
func PassThrough(recipes []Recipe) []Match {
	out := make([]Match, len(recipes))
	for i, r := range recipes {
		out[i] = Match{Recipe: r, Index: i}
	}
	return out
}

// Recipes 取出比對結果中的食譜
func Recipes(matches []Match) []Recipe {
	out := make([]Recipe, len(matches))
	for i, m := range matches {
		out[i] = m.Recipe
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(catalog.Lower(s))
	}
	return out
}
