package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// 各邏輯欄位可能出現的鍵名，依優先順序排列
var (
	nameKeys        = []string{"Dish Name", "name", "dish_name", "title", "Name"}
	thumbnailKeys   = []string{"Thumbnail Image", "thumbnail", "image", "thumbnail_url"}
	storyKeys       = []string{"Story", "story"}
	descriptionKeys = []string{"description"}
	urlKeys         = []string{"Recipe URL", "recipe_url", "url"}
	ingredientKeys  = []string{"Ingredients", "ingredients", "ingredient_list", "recipe_ingredients"}
	stepKeys        = []string{"Steps to Cook", "steps", "instructions"}
	videoKeys       = []string{"Similar YouTube Videos", "videos"}

	videoURLKeys       = []string{"video_url", "url", "link", "youtube_url"}
	videoTitleKeys     = []string{"title", "name"}
	videoThumbnailKeys = []string{"thumbnail_url", "thumbnail", "image"}
)

var (
	ingredientSeparator = regexp.MustCompile(`[,;]`)
	stepMarker          = regexp.MustCompile(`(?:^|\s)(\d+)\.`)
	stripTags           = bluemonday.StrictPolicy()
)

// Normalize 將原始物件轉為 Recipe；index 用於產生預設名稱
func Normalize(raw RawRecipe, index int) Recipe {
	r := Recipe{
		Name:        firstText(raw, nameKeys),
		Thumbnail:   firstText(raw, thumbnailKeys),
		Story:       PlainText(firstText(raw, storyKeys)),
		Description: firstText(raw, descriptionKeys),
		URL:         firstText(raw, urlKeys),
		Ingredients: normalizeIngredients(first(raw, ingredientKeys)),
		Steps:       normalizeSteps(first(raw, stepKeys)),
		Videos:      normalizeVideos(first(raw, videoKeys)),
	}
	if r.Name == "" {
		r.Name = fmt.Sprintf("Recipe %d", index+1)
	}
	return r
}

// PlainText 移除 HTML 標籤並還原實體字元
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

// first 回傳第一個「有值」的欄位；null、false、0 與空字串視為無值
func first(raw RawRecipe, keys []string) json.RawMessage {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || !truthy(v) {
			continue
		}
		return bytes.TrimSpace(v)
	}
	return nil
}

func truthy(v json.RawMessage) bool {
	t := string(bytes.TrimSpace(v))
	switch t {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func firstText(raw RawRecipe, keys []string) string {
	v := first(raw, keys)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(text(v))
}

// text 將單一 JSON 值轉為字串
func text(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if name := first(RawRecipe(obj), []string{"name", "ingredient", "item"}); name != nil {
				return text(name)
			}
		}
	case 'n':
		return ""
	}
	return string(v)
}

func normalizeIngredients(v json.RawMessage) []string {
	out := []string{}
	if v == nil {
		return out
	}
	switch v[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return out
		}
		for _, item := range items {
			if s := strings.TrimSpace(text(item)); s != "" {
				out = append(out, s)
			}
		}
	case '"':
		for _, part := range ingredientSeparator.Split(text(v), -1) {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case '{':
		for _, item := range orderedValues(v) {
			if s := strings.TrimSpace(text(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func normalizeSteps(v json.RawMessage) []string {
	out := []string{}
	if v == nil {
		return out
	}
	switch v[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return out
		}
		for _, item := range items {
			if s := strings.TrimSpace(text(item)); s != "" {
				out = append(out, s)
			}
		}
	case '"':
		out = SplitNumbered(text(v))
	}
	return out
}

// SplitNumbered 在每個 "N." 編號前切分步驟字串，空段落會被捨棄
func SplitNumbered(s string) []string {
	var cuts []int
	for _, loc := range stepMarker.FindAllStringSubmatchIndex(s, -1) {
		// 2.5 之類的小數不是編號
		if end := loc[1]; end < len(s) && s[end] >= '0' && s[end] <= '9' {
			continue
		}
		cuts = append(cuts, loc[2])
	}

	out := []string{}
	start := 0
	for _, cut := range cuts {
		if piece := strings.TrimSpace(s[start:cut]); piece != "" {
			out = append(out, piece)
		}
		start = cut
	}
	if piece := strings.TrimSpace(s[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}

func normalizeVideos(v json.RawMessage) []Video {
	out := []Video{}
	if v == nil || v[0] != '[' {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return out
	}
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		raw := RawRecipe(obj)
		video := Video{
			Title:       firstText(raw, videoTitleKeys),
			URL:         firstText(raw, videoURLKeys),
			Thumbnail:   firstText(raw, videoThumbnailKeys),
			Description: firstText(raw, descriptionKeys),
		}
		if video.Title == "" {
			video.Title = "Video"
		}
		out = append(out, video)
	}
	return out
}

// orderedValues 依鍵出現順序取出物件的值
func orderedValues(v json.RawMessage) []json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(v))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return values
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return values
		}
		values = append(values, value)
	}
	return values
}
