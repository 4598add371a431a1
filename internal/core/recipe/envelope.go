package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"recipe-finder/internal/pkg/common"
)

// Shape 外部 API 回應的頂層結構
type Shape int

const (
	ShapeUnknown Shape = iota // 無法辨識，視為空結果
	ShapeArray                // [...]
	ShapeRecipes              // {"recipes": [...]}
	ShapeData                 // {"data": [...]}
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeRecipes:
		return "recipes"
	case ShapeData:
		return "data"
	default:
		return "unknown"
	}
}

// RawRecipe 尚未正規化的食譜物件
type RawRecipe map[string]json.RawMessage

// Envelope 解析後的回應
type Envelope struct {
	Shape Shape
	Items []RawRecipe
}

// ParseEnvelope 將回應本文解析為已知結構之一。
// JSON 格式錯誤回傳 error；格式正確但結構未知則回傳 ShapeUnknown。
func ParseEnvelope(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Envelope{}, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := common.ParseJSONBytes(trimmed, &items); err != nil {
			return Envelope{}, fmt.Errorf("failed to parse recipe array: %w", err)
		}
		return Envelope{Shape: ShapeArray, Items: toRawRecipes(items)}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := common.ParseJSONBytes(trimmed, &obj); err != nil {
			return Envelope{}, fmt.Errorf("failed to parse recipe object: %w", err)
		}
		if items, ok := asArray(obj["recipes"]); ok {
			return Envelope{Shape: ShapeRecipes, Items: toRawRecipes(items)}, nil
		}
		if items, ok := asArray(obj["data"]); ok {
			return Envelope{Shape: ShapeData, Items: toRawRecipes(items)}, nil
		}
		return Envelope{Shape: ShapeUnknown}, nil
	default:
		var v interface{}
		if err := common.ParseJSONBytes(trimmed, &v); err != nil {
			return Envelope{}, fmt.Errorf("failed to parse response: %w", err)
		}
		return Envelope{Shape: ShapeUnknown}, nil
	}
}

// Recipes 將所有項目正規化
func (e Envelope) Recipes() []Recipe {
	out := make([]Recipe, 0, len(e.Items))
	for i, raw := range e.Items {
		out = append(out, Normalize(raw, i))
	}
	return out
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// 非物件項目直接略過
func toRawRecipes(items []json.RawMessage) []RawRecipe {
	out := make([]RawRecipe, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var raw RawRecipe
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		out = append(out, raw)
	}
	return out
}
