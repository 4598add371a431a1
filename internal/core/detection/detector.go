// Package detection 將上傳的照片轉為食材名稱清單
package detection

import (
	"context"
	"strings"

	"recipe-finder/internal/infrastructure/config"
)

// Detector 食材辨識介面。失敗時回傳空切片與錯誤，不會 panic。
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]string, error)
}

// New 依設定選擇辨識實作
func New(cfg config.DetectionConfig, img config.ImageConfig) Detector {
	if cfg.Mode == config.DetectionSimulated {
		return NewSimulatedDetector()
	}
	return NewRemoteDetector(cfg, NewPreparer(img))
}

// clean 去除空白與重複名稱，保留原順序
func clean(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
