// Package selection 保存使用者目前選取的食材 ID
package selection

import (
	"strings"

	"recipe-finder/internal/core/catalog"
)

// Selection 有序且不重複的食材 ID 集合
type Selection struct {
	ids []string
	set map[string]struct{}
}

// New 建立選取集合，重複的 ID 會被忽略
func New(ids ...string) *Selection {
	s := &Selection{set: make(map[string]struct{})}
	s.AddMany(ids)
	return s
}

// Contains 是否已選取
func (s *Selection) Contains(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Toggle 切換選取狀態，回傳切換後是否選取
func (s *Selection) Toggle(id string) bool {
	if id == "" {
		return false
	}
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	s.add(id)
	return true
}

// AddMany 聯集加入，維持既有順序並回傳新加入的 ID
func (s *Selection) AddMany(ids []string) []string {
	var added []string
	for _, id := range ids {
		if id == "" || s.Contains(id) {
			continue
		}
		s.add(id)
		added = append(added, id)
	}
	return added
}

// Remove 移除選取
func (s *Selection) Remove(id string) bool {
	if !s.Contains(id) {
		return false
	}
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Clear 清空選取
func (s *Selection) Clear() {
	s.ids = nil
	s.set = make(map[string]struct{})
}

// SubmitCustom 處理使用者輸入的自訂食材：註冊到目錄並加入選取
func (s *Selection) SubmitCustom(text string, c *catalog.Catalog) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	id := c.Register(trimmed)
	if id == "" || s.Contains(id) {
		return id, false
	}
	s.add(id)
	return id, true
}

// IDs 回傳選取 ID 的副本
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len 選取數量
func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) add(id string) {
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
}
