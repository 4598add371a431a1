package featured

import (
	"context"
	"fmt"
	"time"

	"recipe-finder/internal/core/catalog"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type apiResponse struct {
	Results []apiFestival `json:"results"`
}

type apiFestival struct {
	Festival string      `json:"festival"`
	Date     string      `json:"date"`
	Recipes  []apiRecipe `json:"recipes"`
}

type apiRecipe struct {
	Heading       string   `json:"heading"`
	Description   string   `json:"description"`
	ThumbURL      string   `json:"thumbUrl"`
	CookTime      string   `json:"cookTime"`
	URL           string   `json:"url"`
	Author        string   `json:"author"`
	Tags          []string `json:"tags"`
	YoutubeVideos []struct {
		YoutubeURL string `json:"youtube_url"`
	} `json:"youtube_videos"`
}

// Client 節慶食譜 API 客戶端
type Client struct {
	client *resty.Client
	url    string
}

// NewClient 創建節慶食譜客戶端
func NewClient(cfg config.FeaturedConfig) *Client {
	client := resty.New().SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{client: client, url: cfg.URL}
}

// Festivals 取得當月節慶食譜。
// 先查詢 range=month，失敗時改用當月起訖日期；仍失敗或沒有資料時回傳內建清單。
func (c *Client) Festivals(ctx context.Context, now time.Time) (festivals []Festival, err error) {
	start := time.Now()
	defer func() {
		common.LogRemoteCall("featured", time.Since(start), err, zap.Int("festivals", len(festivals)))
	}()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("range", "month").
		Get(c.url)
	if err != nil {
		return Fallback(), common.ErrServiceUnavailable.Wrap(fmt.Errorf("failed to send request: %w", err))
	}

	if !resp.IsSuccess() {
		from, to := MonthRange(now)
		resp, err = c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"range":      "custom",
				"start_date": from,
				"end_date":   to,
			}).
			Get(c.url)
		if err != nil {
			return Fallback(), common.ErrServiceUnavailable.Wrap(fmt.Errorf("failed to send request: %w", err))
		}
	}

	if !resp.IsSuccess() {
		return Fallback(), common.ErrServiceUnavailable.Wrap(fmt.Errorf("HTTP error! status: %d", resp.StatusCode()))
	}

	var body apiResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return Fallback(), common.ErrServiceUnavailable.Wrap(fmt.Errorf("failed to parse response: %w", err))
	}

	festivals = convert(body.Results)
	if len(festivals) == 0 {
		return Fallback(), nil
	}
	return festivals, nil
}

// MonthRange 當月第一天與最後一天（YYYY-MM-DD）
func MonthRange(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

func convert(results []apiFestival) []Festival {
	festivals := make([]Festival, 0, len(results))
	for _, f := range results {
		if len(f.Recipes) == 0 {
			continue
		}
		id := catalog.NormalizeID(f.Festival)
		festival := Festival{
			ID:          id,
			Name:        f.Festival,
			Date:        f.Date,
			Description: fmt.Sprintf("Celebrate %s with these traditional and delicious recipes!", f.Festival),
			Tag:         festivalTags[id],
			Recipes:     make([]Recipe, 0, len(f.Recipes)),
		}
		for i, r := range f.Recipes {
			festival.Recipes = append(festival.Recipes, convertRecipe(i, f.Festival, r))
		}
		festivals = append(festivals, festival)
	}
	return festivals
}

func convertRecipe(i int, festival string, r apiRecipe) Recipe {
	out := Recipe{
		ID:          i + 1,
		Name:        r.Heading,
		Description: r.Description,
		Image:       r.ThumbURL,
		CookTime:    r.CookTime,
		Difficulty:  DifficultyFromTags(r.Tags),
		Type:        TypeFromTags(r.Tags),
		RecipeURL:   r.URL,
		Tags:        r.Tags,
	}
	if out.Description == "" {
		out.Description = fmt.Sprintf("Traditional %s recipe", festival)
	}
	if out.Image == "" {
		out.Image = defaultImage
	}
	if r.Author != placeholderAuthor {
		out.Author = r.Author
	}
	if len(r.YoutubeVideos) > 0 {
		out.VideoURL = r.YoutubeVideos[0].YoutubeURL
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}
