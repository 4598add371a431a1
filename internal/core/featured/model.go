// Package featured 取得當月節慶推薦食譜
package featured

import (
	"strings"

	"recipe-finder/internal/core/catalog"
)

// Festival 節慶與其推薦食譜
type Festival struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Tag         string   `json:"tag,omitempty"`
	Recipes     []Recipe `json:"recipes"`
}

// Recipe 節慶食譜卡片
type Recipe struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	CookTime    string   `json:"cook_time,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Type        string   `json:"type"`
	VideoURL    string   `json:"video_url,omitempty"`
	RecipeURL   string   `json:"recipe_url"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags"`
}

const (
	defaultImage = "https://images.unsplash.com/photo-1546554137-f86b9593a222?w=400&h=300&fit=crop"
	// 上游的預設作者名稱，不顯示
	placeholderAuthor = "Chef Special"
)

// 節慶 ID 對應的食譜標籤頁
var festivalTags = map[string]string{
	"onam":             "onam-recipes",
	"eid-milad":        "eid-recipes",
	"navratri":         "navratri-recipes",
	"durga-puja":       "durga-puja-recipes",
	"durga-ashtami":    "navratri-recipes",
	"ganesh-chaturthi": "ganesh-chaturthi",
	"karwa-chauth":     "karwa-chauth-recipes",
	"diwali":           "diwali-recipes",
	"dussehra":         "dussehra-recipes",
	"janmashtami":      "janmashtami-recipes",
	"parsva-ekadashi":  "ekadashi-recipes",
	"vishwakarma-puja": "vishwakarma-puja-recipes",
	"mahalaya":         "durga-puja-recipes",
}

func hasTag(tags []string, word string) bool {
	for _, tag := range tags {
		if strings.Contains(catalog.Lower(tag), word) {
			return true
		}
	}
	return false
}

// DifficultyFromTags 由標籤推斷難度，沒有相關標籤時為空
func DifficultyFromTags(tags []string) string {
	for _, level := range []string{"easy", "medium", "hard"} {
		if hasTag(tags, level) {
			return strings.ToUpper(level)
		}
	}
	return ""
}

// TypeFromTags 由標籤推斷類型
func TypeFromTags(tags []string) string {
	for _, kind := range []struct{ word, name string }{
		{"sweet", "Sweet"},
		{"healthy", "Healthy"},
		{"spicy", "Spicy"},
		{"snack", "Snack"},
		{"fasting", "Fasting"},
	} {
		if hasTag(tags, kind.word) {
			return kind.name
		}
	}
	return "Traditional"
}
