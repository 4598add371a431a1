// Package kitchen 保存單一工作階段的完整狀態：食材目錄、選取、最近一次搜尋結果。
//
// 所有變更都經由 State 的方法進行，並以互斥鎖保護；搜尋以遞增的 token 排序，
// 只有最新發出的搜尋可以寫入結果。
package kitchen

import (
	"sync"
	"time"

	"recipe-finder/internal/core/catalog"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/core/selection"
	"recipe-finder/internal/core/voice"
)

// SearchKind 搜尋種類
type SearchKind string

const (
	SearchNone        SearchKind = ""
	SearchIngredients SearchKind = "ingredients"
	SearchQuery       SearchKind = "query"
)

// MatchFunc 將抓回的食譜依選取項目篩選排序
type MatchFunc func(recipes []recipe.Recipe, selectedIDs []string, resolver recipe.Resolver) []recipe.Match

// PassThrough 不篩選，用於自然語言查詢
func PassThrough(recipes []recipe.Recipe, _ []string, _ recipe.Resolver) []recipe.Match {
	return recipe.PassThrough(recipes)
}

// Search 一次已發出的搜尋
type Search struct {
	Token uint64
	Kind  SearchKind
	IDs   []string
	Query string
}

// State 工作階段狀態
type State struct {
	mu sync.Mutex

	catalog   *catalog.Catalog
	selection *selection.Selection

	results  []recipe.Match
	errMsg   string
	loading  bool
	detected []string

	token     uint64
	lastKind  SearchKind
	lastIDs   []string
	lastQuery string

	// version 在目錄或選取變更時遞增；base 為載入時（或上次寫入後）的版本
	version uint64
	base    uint64

	updatedAt time.Time
}

// New 建立含預設食材的狀態
func New() *State {
	return &State{
		catalog:   catalog.New(),
		selection: selection.New(),
		results:   []recipe.Match{},
		version:   1,
		updatedAt: time.Now(),
	}
}

// Restore 由持久化資料還原狀態；不在目錄中的選取 ID 仍保留
func Restore(p Persisted) *State {
	items := p.Catalog
	c := catalog.New()
	if len(items) > 0 {
		c = catalog.Restore(items)
	}
	return &State{
		catalog:   c,
		selection: selection.New(p.Selected...),
		results:   []recipe.Match{},
		version:   p.Version,
		base:      p.Version,
		updatedAt: time.Now(),
	}
}

func (s *State) touch() {
	s.updatedAt = time.Now()
}

// changed 目錄或選取有變更
func (s *State) changed() {
	s.version++
	s.touch()
}

// Toggle 切換食材選取，回傳切換後是否選取
func (s *State) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.selection.Toggle(id)
}

// AddMany 將名稱註冊到目錄後聯集加入選取，回傳新加入的 ID
func (s *State) AddMany(names []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.addNames(names)
}

func (s *State) addNames(names []string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if id := s.catalog.Register(name); id != "" {
			ids = append(ids, id)
		}
	}
	return s.selection.AddMany(ids)
}

// SelectIDs 依 ID 聯集加入選取
func (s *State) SelectIDs(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.selection.AddMany(ids)
}

// Remove 取消選取
func (s *State) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.selection.Remove(id)
}

// Clear 清空選取
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	s.selection.Clear()
}

// SubmitCustom 新增自訂食材並選取；空白輸入不做任何事
func (s *State) SubmitCustom(text string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.selection.SubmitCustom(text, s.catalog)
}

// RegisterIngredient 只註冊到目錄，不選取
func (s *State) RegisterIngredient(name string) (catalog.Ingredient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	id := s.catalog.Register(name)
	if id == "" {
		return catalog.Ingredient{}, false
	}
	return s.catalog.Get(id)
}

// RemoveCustomIngredient 從目錄移除自訂食材並一併取消選取
func (s *State) RemoveCustomIngredient(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.catalog.Remove(id) {
		return false
	}
	s.selection.Remove(id)
	s.changed()
	return true
}

// ApplyDetection 記錄辨識結果並聯集加入選取
func (s *State) ApplyDetection(names []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	s.detected = append([]string{}, names...)
	return s.addNames(names)
}

// ApplyTranscript 拆解語音轉錄並加入選取
func (s *State) ApplyTranscript(text string) []string {
	return s.AddMany(voice.SplitTranscript(text))
}

// BeginSearch 發出新搜尋並回傳其 token，舊的搜尋自此失效
func (s *State) BeginSearch(kind SearchKind, query string) Search {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.loading = true
	s.errMsg = ""
	s.lastKind = kind
	s.lastQuery = query
	s.lastIDs = s.selection.IDs()
	s.touch()

	return Search{Token: s.token, Kind: kind, IDs: s.lastIDs, Query: query}
}

// LastSearch 最近一次發出的搜尋種類與查詢字串
func (s *State) LastSearch() (SearchKind, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastKind, s.lastQuery
}

// CompleteSearch 寫入搜尋結果。token 不是最新時丟棄並回傳 false。
// 結果整批取代；失敗時清空結果並保留錯誤訊息。
func (s *State) CompleteSearch(token uint64, result recipe.Result, match MatchFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return false
	}

	s.loading = false
	s.touch()

	if result.Failed() {
		s.results = []recipe.Match{}
		s.errMsg = result.Err.Error()
		return true
	}

	if match == nil {
		match = PassThrough
	}
	s.results = match(result.Recipes, s.lastIDs, s.catalog)
	if s.results == nil {
		s.results = []recipe.Match{}
	}
	s.errMsg = ""
	return true
}

// SelectedIDs 目前選取的 ID
func (s *State) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// Ingredient 依 ID 查詢目錄
func (s *State) Ingredient(id string) (catalog.Ingredient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Get(id)
}

// Catalog 目前目錄內容
func (s *State) Catalog() []catalog.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.List()
}

// Version 目錄與選取的版本，每次變更遞增
func (s *State) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Base 載入或上次寫入時的版本
func (s *State) Base() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// Dirty 自載入後目錄或選取是否變更過
func (s *State) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.base
}

// MarkSaved 記錄已寫入的版本
func (s *State) MarkSaved(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = version
}

// UpdatedAt 最後變更時間
func (s *State) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
