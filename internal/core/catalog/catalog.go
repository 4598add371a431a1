// Package catalog 管理使用者可選的食材清單
package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultIcon 自訂食材的預設圖示
const DefaultIcon = "🥄"

// Ingredient 食材
type Ingredient struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Custom bool   `json:"custom"`
}

// 預設食材
var defaults = []Ingredient{
	{ID: "rice", Name: "Rice", Icon: "🍚"},
	{ID: "chicken", Name: "Chicken", Icon: "🍗"},
	{ID: "tomatoes", Name: "Tomatoes", Icon: "🍅"},
	{ID: "onions", Name: "Onions", Icon: "🧅"},
	{ID: "potatoes", Name: "Potatoes", Icon: "🥔"},
	{ID: "lentils", Name: "Lentils", Icon: "🫘"},
	{ID: "paneer", Name: "Paneer", Icon: "🧀"},
	{ID: "spinach", Name: "Spinach", Icon: "🥬"},
	{ID: "carrots", Name: "Carrots", Icon: "🥕"},
	{ID: "garlic", Name: "Garlic", Icon: "🧄"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Lower 以 Unicode 規則轉小寫，比對與 ID 共用。
// cases.Caser 帶有狀態，不可跨 goroutine 共用，因此每次建立。
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// NormalizeID 由顯示名稱推導食材 ID：去空白、轉小寫、空白以連字號取代
func NormalizeID(text string) string {
	return whitespaceRun.ReplaceAllString(Lower(strings.TrimSpace(text)), "-")
}

// Capitalize 首字母大寫，其餘保持不變
func Capitalize(id string) string {
	r, size := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError {
		return id
	}
	return string(unicode.ToUpper(r)) + id[size:]
}

// Catalog 食材目錄。非並行安全，由 kitchen.State 負責序列化存取。
type Catalog struct {
	items []Ingredient
	index map[string]int
}

// New 建立含預設食材的目錄
func New() *Catalog {
	c := &Catalog{index: make(map[string]int, len(defaults))}
	for _, ing := range defaults {
		c.insert(ing)
	}
	return c
}

// Restore 由快照還原目錄，重複 ID 只保留第一個
func Restore(items []Ingredient) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	for _, ing := range items {
		if ing.ID == "" {
			continue
		}
		if _, ok := c.index[ing.ID]; ok {
			continue
		}
		c.insert(ing)
	}
	return c
}

func (c *Catalog) insert(ing Ingredient) {
	c.index[ing.ID] = len(c.items)
	c.items = append(c.items, ing)
}

// Resolve 取得顯示名稱；未知 ID 回傳首字母大寫的 ID
func (c *Catalog) Resolve(id string) string {
	if i, ok := c.index[id]; ok {
		return c.items[i].Name
	}
	return Capitalize(id)
}

// Register 註冊食材並回傳其 ID；已存在時不變更
func (c *Catalog) Register(displayName string) string {
	name := strings.TrimSpace(displayName)
	id := NormalizeID(name)
	if id == "" {
		return ""
	}
	if _, ok := c.index[id]; !ok {
		c.insert(Ingredient{ID: id, Name: name, Icon: DefaultIcon, Custom: true})
	}
	return id
}

// Get 依 ID 取得食材
func (c *Catalog) Get(id string) (Ingredient, bool) {
	i, ok := c.index[id]
	if !ok {
		return Ingredient{}, false
	}
	return c.items[i], true
}

// Remove 移除自訂食材，預設食材不可移除
func (c *Catalog) Remove(id string) bool {
	i, ok := c.index[id]
	if !ok || !c.items[i].Custom {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
	return true
}

// List 依加入順序回傳所有食材
func (c *Catalog) List() []Ingredient {
	out := make([]Ingredient, len(c.items))
	copy(out, c.items)
	return out
}

// Len 食材數量
func (c *Catalog) Len() int {
	return len(c.items)
}
