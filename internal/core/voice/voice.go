// Package voice 處理語音輸入的轉錄結果
package voice

import (
	"context"
	"regexp"
	"strings"

	"recipe-finder/internal/pkg/common"
)

var (
	// ErrUnsupported 執行環境沒有語音辨識能力
	ErrUnsupported = common.ErrSpeechUnsupported
	// ErrNoSpeech 沒有辨識到任何內容
	ErrNoSpeech = common.ErrNoSpeech
)

// Transcriber 一次性語音轉文字
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// Unsupported 伺服器端沒有語音平台，直接回報不支援
type Unsupported struct{}

// Transcribe 立即失敗
func (Unsupported) Transcribe(context.Context) (string, error) {
	return "", ErrUnsupported
}

// Static 包裝瀏覽器端已完成的轉錄
type Static string

// Transcribe 回傳轉錄文字，空白視為沒有語音
func (s Static) Transcribe(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(s))
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

var separators = regexp.MustCompile(`(?i)\s*(?:[,;]|\band\b)\s*`)

// SplitTranscript 將「tomatoes, onions and rice」拆成個別食材名稱
func SplitTranscript(text string) []string {
	parts := separators.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
