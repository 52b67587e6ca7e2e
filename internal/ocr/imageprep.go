package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// PrepareRegion 裁剪 rect 区域，灰度化、锐化后按 scale 倍放大并二值化。
// rect 与图像无交集时返回 nil。
func PrepareRegion(img image.Image, rect image.Rectangle, scale int) *image.Gray {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil
	}
	if scale < 1 {
		scale = 1
	}

	region := imaging.Crop(img, rect)
	region = imaging.Grayscale(region)
	region = imaging.Sharpen(region, 1.0)
	region = imaging.Resize(region, rect.Dx()*scale, rect.Dy()*scale, imaging.CatmullRom)

	dst := image.NewGray(region.Bounds())
	draw.Draw(dst, dst.Bounds(), region, region.Bounds().Min, draw.Src)
	binarize(dst, otsuThreshold(dst))
	return dst
}

// otsuThreshold 类间方差最大的灰度阈值
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	total := len(g.Pix)
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var (
		sumB, best float64
		wB         int
		threshold  uint8
	)
	for i, c := range hist {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * c)
		mB := sumB / float64(wB)
		mF := (sumAll - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

func binarize(g *image.Gray, threshold uint8) {
	for i, v := range g.Pix {
		if v > threshold {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ImageRescanner 在整页图像上裁剪代码单元格并交给 Recognizer 重新识别
type ImageRescanner struct {
	Image      image.Image
	Recognizer Recognizer
	PadX       float64
	PadY       float64
	Scale      int
}

// Rescan 实现 Rescanner
func (s *ImageRescanner) Rescan(ctx context.Context, x, y float64) ([]Item, error) {
	rect := image.Rect(int(x-s.PadX), int(y-s.PadY), int(x+s.PadX), int(y+s.PadY))
	region := PrepareRegion(s.Image, rect.Add(s.Image.Bounds().Min), s.Scale)
	if region == nil {
		return nil, nil
	}
	data, err := encodePNG(region)
	if err != nil {
		return nil, err
	}
	return s.Recognizer.Recognize(ctx, data)
}
