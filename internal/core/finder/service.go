// Package finder 串接食譜來源、比對器與食材辨識，作用於單一工作階段狀態
package finder

import (
	"context"
	"strings"

	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNoIngredients 未選取任何食材時拒絕搜尋
var ErrNoIngredients = common.ErrNoIngredients

// Service 搜尋服務
type Service struct {
	source   recipe.Finder
	matcher  *recipe.Matcher
	detector detection.Detector
}

// NewService 創建搜尋服務
func NewService(source recipe.Finder, matcher *recipe.Matcher, detector detection.Detector) *Service {
	return &Service{
		source:   source,
		matcher:  matcher,
		detector: detector,
	}
}

// Search 以目前選取的食材搜尋。抓取失敗不回傳錯誤，錯誤訊息記錄在狀態中。
func (s *Service) Search(ctx context.Context, state *kitchen.State) (kitchen.Snapshot, error) {
	if len(state.SelectedIDs()) == 0 {
		return state.Snapshot(), ErrNoIngredients
	}

	search := state.BeginSearch(kitchen.SearchIngredients, "")
	result := s.source.FindByIngredients(ctx, search.IDs)
	s.complete(state, search, result, s.matcher.Match)

	return state.Snapshot(), nil
}

// SearchQuery 以自然語言查詢，結果原樣顯示。空白查詢不做任何事。
func (s *Service) SearchQuery(ctx context.Context, state *kitchen.State, query string) (kitchen.Snapshot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return state.Snapshot(), nil
	}

	search := state.BeginSearch(kitchen.SearchQuery, query)
	result := s.source.FindByFreeTextQuery(ctx, query)
	s.complete(state, search, result, kitchen.PassThrough)

	return state.Snapshot(), nil
}

// Retry 重新執行最近一次的搜尋
func (s *Service) Retry(ctx context.Context, state *kitchen.State) (kitchen.Snapshot, error) {
	kind, query := state.LastSearch()
	switch kind {
	case kitchen.SearchQuery:
		return s.SearchQuery(ctx, state, query)
	case kitchen.SearchIngredients:
		return s.Search(ctx, state)
	default:
		return state.Snapshot(), common.NewValidationError("no previous search to retry")
	}
}

// Detect 辨識圖片中的食材並加入選取。失敗時選取不變。
func (s *Service) Detect(ctx context.Context, state *kitchen.State, image []byte) ([]string, error) {
	items, err := s.detector.Detect(ctx, image)
	if err != nil {
		return []string{}, err
	}
	state.ApplyDetection(items)
	return items, nil
}

func (s *Service) complete(state *kitchen.State, search kitchen.Search, result recipe.Result, match kitchen.MatchFunc) {
	if !state.CompleteSearch(search.Token, result, match) {
		common.LogDebug("Discarded stale search result",
			zap.Uint64("token", search.Token),
			zap.String("kind", string(search.Kind)),
		)
		return
	}
	if result.Failed() {
		common.LogWarn("Recipe search failed",
			zap.String("kind", string(search.Kind)),
			zap.Error(result.Err),
		)
	}
}
