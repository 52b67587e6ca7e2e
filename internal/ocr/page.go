package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"gradcheck/backend/internal/model"
)

// ProcessPage 单页完整流程：解码 → 整页识别 → 重建（按需二次识别代码单元格）
func ProcessPage(ctx context.Context, rec Recognizer, data []byte, opts Options) ([]model.CourseRecord, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}

	items, err := rec.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("recognize page: %w", err)
	}

	opts = opts.withDefaults()
	var rescanner Rescanner
	if opts.Rescan {
		rescanner = &ImageRescanner{
			Image:      img,
			Recognizer: rec,
			PadX:       opts.RescanPadX,
			PadY:       opts.RescanPadY,
			Scale:      opts.RescanScale,
		}
	}
	return NewReconstructor(opts, rescanner).Reconstruct(ctx, items), nil
}

// MergePages 按页序合并多页结果，丢弃 (code, semester, grade, retake) 完全相同的重复行。
// 同一课程在不同学期的记录（如重修前后）保留。
func MergePages(pages ...[]model.CourseRecord) []model.CourseRecord {
	type key struct {
		code, semester, grade string
		retake                bool
	}
	seen := make(map[key]bool)
	out := make([]model.CourseRecord, 0)
	for _, recs := range pages {
		for _, r := range recs {
			k := key{r.Code, r.Semester, r.Grade, r.Retake}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
	}
	return out
}
