package kitchen

import (
	"recipe-finder/internal/core/catalog"
	"recipe-finder/internal/core/recipe"
)

// Snapshot 可序列化的狀態副本
type Snapshot struct {
	Catalog    []catalog.Ingredient `json:"catalog"`
	Selected   []Selected           `json:"selected"`
	CanSearch  bool                 `json:"can_search"`
	Detected   []string             `json:"detected"`
	Results    []recipe.Match       `json:"results"`
	Error      string               `json:"error,omitempty"`
	Loading    bool                 `json:"loading"`
	LastSearch SearchKind           `json:"last_search,omitempty"`
	Query      string               `json:"query,omitempty"`
}

// Selected 已選取食材與其顯示名稱
type Selected struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Persisted 需要跨請求保存的部分；搜尋結果只存在於單次抓取與顯示
type Persisted struct {
	Catalog  []catalog.Ingredient `json:"catalog"`
	Selected []string             `json:"selected"`
	Version  uint64               `json:"version"`
}

// Snapshot 取得目前狀態的副本
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.selection.IDs()
	selected := make([]Selected, len(ids))
	for i, id := range ids {
		selected[i] = Selected{ID: id, Name: s.catalog.Resolve(id)}
	}

	results := make([]recipe.Match, len(s.results))
	copy(results, s.results)

	return Snapshot{
		Catalog:    s.catalog.List(),
		Selected:   selected,
		CanSearch:  len(ids) > 0,
		Detected:   append([]string{}, s.detected...),
		Results:    results,
		Error:      s.errMsg,
		Loading:    s.loading,
		LastSearch: s.lastKind,
		Query:      s.lastQuery,
	}
}

// Persist 取得需保存的資料
func (s *State) Persist() Persisted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Persisted{
		Catalog:  s.catalog.List(),
		Selected: s.selection.IDs(),
		Version:  s.version,
	}
}
