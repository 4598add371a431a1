package detection

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const detectItemsPath = "/detect_items"

type detectResponse struct {
	DetectedItems struct {
		Ingredients []string `json:"ingredients"`
	} `json:"detected_items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RemoteDetector 呼叫外部辨識服務
type RemoteDetector struct {
	client   *resty.Client
	preparer *Preparer
}

// NewRemoteDetector 創建遠端辨識器
func NewRemoteDetector(cfg config.DetectionConfig, preparer *Preparer) *RemoteDetector {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &RemoteDetector{client: client, preparer: preparer}
}

// Detect 上傳圖片並取得辨識出的食材
func (d *RemoteDetector) Detect(ctx context.Context, image []byte) (items []string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			items, err = []string{}, common.ErrDetectionService.Wrap(fmt.Errorf("panic: %v", r))
		}
		common.LogRemoteCall("detection", time.Since(start), err,
			zap.Int("bytes", len(image)),
			zap.Strings("items", items),
		)
	}()

	prepared, err := d.preparer.Prepare(image)
	if err != nil {
		return []string{}, err
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetMultipartField("file", prepared.FileName, prepared.ContentType, bytes.NewReader(prepared.Data)).
		Post(detectItemsPath)
	if err != nil {
		return []string{}, common.ErrDetectionService.Wrap(fmt.Errorf("failed to send request: %w", err))
	}

	if !resp.IsSuccess() {
		var body errorResponse
		if perr := common.ParseJSONBytes(resp.Body(), &body); perr == nil && body.Error != "" {
			return []string{}, common.ErrDetectionService.Wrap(fmt.Errorf("%s", body.Error))
		}
		return []string{}, common.ErrDetectionService.Wrap(fmt.Errorf("HTTP error! status: %d", resp.StatusCode()))
	}

	var body detectResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		common.LogWarn("Unexpected detection response body",
			zap.String("body", common.Truncate(resp.String(), 200)),
		)
		return []string{}, common.ErrDetectionService.Wrap(fmt.Errorf("failed to parse response: %w", err))
	}

	return clean(body.DetectedItems.Ingredients), nil
}
