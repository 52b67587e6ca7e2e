package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	// 中间一块黑色，模拟文字
	draw.Draw(img, image.Rect(w/4, h/4, w*3/4, h*3/4), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return img
}

func TestPrepareRegion(t *testing.T) {
	img := testImage(100, 40)

	g := PrepareRegion(img, image.Rect(10, 5, 50, 25), 4)
	if g == nil {
		t.Fatal("期望得到区域图像")
	}
	if g.Bounds().Dx() != 160 || g.Bounds().Dy() != 80 {
		t.Errorf("期望 160x80，实际 %v", g.Bounds())
	}
	for _, v := range g.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("二值化后只应有 0/255，出现 %d", v)
		}
	}

	// 放大后文字区域为黑、背景为白
	if v := g.GrayAt(150, 60).Y; v != 0 {
		t.Errorf("文字区域应为 0，实际 %d", v)
	}
	if v := g.GrayAt(10, 10).Y; v != 255 {
		t.Errorf("背景应为 255，实际 %d", v)
	}

	// 部分越界时按交集裁剪
	if g := PrepareRegion(img, image.Rect(80, 30, 120, 60), 2); g == nil || g.Bounds().Dx() != 40 {
		t.Errorf("越界区域应裁剪为交集，实际 %v", g)
	}
	if g := PrepareRegion(img, image.Rect(200, 200, 240, 220), 2); g != nil {
		t.Error("完全越界应返回 nil")
	}
}

func TestOtsuThreshold(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 1))
	for i := range g.Pix {
		if i < 5 {
			g.Pix[i] = 20
		} else {
			g.Pix[i] = 220
		}
	}
	th := otsuThreshold(g)
	if th < 20 || th >= 220 {
		t.Errorf("阈值应落在两类之间，实际 %d", th)
	}
}

type recordingRecognizer struct {
	calls int
	items []Item
}

func (r *recordingRecognizer) Recognize(ctx context.Context, data []byte) ([]Item, error) {
	r.calls++
	return r.items, nil
}

func TestImageRescanner(t *testing.T) {
	rec := &recordingRecognizer{items: []Item{{Text: "123456", Confidence: 0.9}}}
	rs := &ImageRescanner{Image: testImage(200, 100), Recognizer: rec, PadX: 40, PadY: 12, Scale: 4}

	items, err := rs.Rescan(context.Background(), 100, 50)
	if err != nil {
		t.Fatalf("Rescan 失败: %v", err)
	}
	if rec.calls != 1 || len(items) != 1 {
		t.Errorf("期望调用识别器 1 次，实际 %d", rec.calls)
	}

	items, err = rs.Rescan(context.Background(), 1000, 1000)
	if err != nil || items != nil || rec.calls != 1 {
		t.Errorf("区域越界时不应调用识别器，实际 calls=%d items=%v err=%v", rec.calls, items, err)
	}
}

func TestFormatRows(t *testing.T) {
	if got := FormatRows(nil, true); got != "파싱된 데이터가 없습니다." {
		t.Errorf("空结果文本错误: %q", got)
	}

	records := Reconstruct(page(
		dataRow(100, "100001", "", "", "A0"),
		append(dataRow(140, "100002", "", "", "B+"), cell("재수강", 560, 140)),
	), DefaultOptions())

	want := "--- 1-2 학기 ---\n100001 A0\n100002 B+ 재수강"
	if got := FormatRows(records, true); got != want {
		t.Errorf("分组文本错误:\n%s\n期望:\n%s", got, want)
	}
	if got := FormatRows(records, false); got != "1-2 100001 A0\n1-2 100002 B+ 재수강" {
		t.Errorf("平铺文本错误: %q", got)
	}
}
