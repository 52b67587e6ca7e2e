package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer 文字识别引擎：输入编码后的图像（PNG/JPEG），输出文本块
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]Item, error)
}

// TesseractConfig Tesseract 识别参数
type TesseractConfig struct {
	Languages      []string // 例如 kor, eng
	TessdataPrefix string
}

// TesseractRecognizer 基于 gosseract 的 Recognizer；每次调用使用独立 client，可并发使用
type TesseractRecognizer struct {
	cfg           TesseractConfig
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer 创建 Tesseract 识别器
func NewTesseractRecognizer(cfg TesseractConfig) *TesseractRecognizer {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"kor", "eng"}
	}
	return &TesseractRecognizer{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Recognize 以单词为粒度输出文本块，置信度换算到 [0, 1]
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.clientFactory()
	defer c.Close()

	if r.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(r.cfg.Languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	items := make([]Item, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		items = append(items, RectItem(text, b.Confidence/100.0,
			float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Max.X), float64(b.Box.Max.Y)))
	}
	return items, nil
}
