package detection

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

const jpegQuality = 85

// Prepared 上傳前處理完成的圖片
type Prepared struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Preparer 上傳前的圖片處理：縮小尺寸並轉為 JPEG
type Preparer struct {
	maxSizeBytes int64
	maxDimension uint
}

// NewPreparer 創建圖片處理器
func NewPreparer(cfg config.ImageConfig) *Preparer {
	return &Preparer{
		maxSizeBytes: cfg.MaxSizeBytes,
		maxDimension: cfg.MaxDimension,
	}
}

// Prepare 處理圖片。無法解碼的內容原樣交給辨識服務判斷。
func (p *Preparer) Prepare(data []byte) (Prepared, error) {
	if len(data) == 0 {
		return Prepared{}, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("image data is empty"))
	}

	// 檢查文件大小
	if p.maxSizeBytes > 0 && int64(len(data)) > p.maxSizeBytes {
		return Prepared{}, common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image size exceeds maximum limit of %d bytes", p.maxSizeBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || !isSupportedFormat(format) {
		common.LogImageProcessing("warn",
			zap.String("format", format),
			zap.Int("bytes", len(data)),
			zap.NamedError("decode_error", err),
		)
		return passthrough(data), nil
	}

	bounds := img.Bounds()
	resized := false
	if p.maxDimension > 0 && (uint(bounds.Dx()) > p.maxDimension || uint(bounds.Dy()) > p.maxDimension) {
		img = resize.Thumbnail(p.maxDimension, p.maxDimension, img, resize.Lanczos3)
		resized = true
	}

	// 尺寸合格的 JPEG 不重新壓縮
	if !resized && format == "jpeg" {
		return Prepared{Data: data, ContentType: "image/jpeg", FileName: "upload.jpg"}, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Prepared{}, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to encode image as JPEG: %w", err))
	}

	common.LogImageProcessing("info",
		zap.String("format", format),
		zap.Int("original_bytes", len(data)),
		zap.Int("prepared_bytes", buf.Len()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	return Prepared{Data: buf.Bytes(), ContentType: "image/jpeg", FileName: "upload.jpg"}, nil
}

func passthrough(data []byte) Prepared {
	return Prepared{
		Data:        data,
		ContentType: http.DetectContentType(data),
		FileName:    "upload",
	}
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
