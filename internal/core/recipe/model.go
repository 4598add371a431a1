package recipe

// Video 相關影片
type Video struct {
	Title       string `json:"title"`
	URL         string `json:"video_url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
}

// Recipe 正規化後的食譜，只在一次搜尋與顯示期間存在
type Recipe struct {
	Name        string   `json:"name"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Story       string   `json:"story,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Videos      []Video  `json:"videos"`
}

// Match 比對結果
type Match struct {
	Recipe     Recipe `json:"recipe"`
	Index      int    `json:"index"`       // 在來源清單中的位置
	Count      int    `json:"match_count"` // 命中的選取食材數
	Backfilled bool   `json:"backfilled"`  // 僅為補足顯示數量而加入
	Highlights []bool `json:"highlights,omitempty"`
}
