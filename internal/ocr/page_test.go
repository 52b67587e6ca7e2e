package ocr

import (
	"context"
	"errors"
	"testing"

	"gradcheck/backend/internal/model"
)

func TestMergePages(t *testing.T) {
	p1 := []model.CourseRecord{
		{Code: "012345", Grade: "A+", Semester: "1-1"},
		{Code: "012346", Grade: "B0", Semester: "1-1"},
	}
	p2 := []model.CourseRecord{
		{Code: "012346", Grade: "B0", Semester: "1-1"},               // 跨页重复
		{Code: "012346", Grade: "A0", Semester: "2-1", Retake: true}, // 重修，保留
	}

	got := MergePages(p1, p2)
	if len(got) != 3 {
		t.Fatalf("期望 3 条，实际 %d: %+v", len(got), got)
	}
	if got[2].Semester != "2-1" || !got[2].Retake {
		t.Errorf("重修记录应保留在末尾，实际 %+v", got[2])
	}

	if empty := MergePages(); empty == nil || len(empty) != 0 {
		t.Errorf("无输入应返回空切片，实际 %v", empty)
	}
}

type failingRecognizer struct{}

func (failingRecognizer) Recognize(context.Context, []byte) ([]Item, error) {
	return nil, errors.New("engine down")
}

func TestProcessPage_InvalidImage(t *testing.T) {
	_, err := ProcessPage(context.Background(), failingRecognizer{}, []byte("not an image"), DefaultOptions())
	if err == nil {
		t.Fatal("无法解码的图片应返回错误")
	}
}

func TestProcessPage_ReconstructsRows(t *testing.T) {
	data, err := encodePNG(testImage(600, 200))
	if err != nil {
		t.Fatalf("编码测试图片失败: %v", err)
	}
	rec := &recordingRecognizer{items: page(
		dataRow(100, "123456", "자료구조", "3", "A+"),
		dataRow(130, "123457", "운영체제", "3", "B0"),
	)}

	got, err := ProcessPage(context.Background(), rec, data, DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessPage 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 行，实际 %d: %+v", len(got), got)
	}
	if got[0].Code != "123456" || got[1].Grade != "B0" {
		t.Errorf("重建结果不符: %+v", got)
	}
	if rec.calls != 1 {
		t.Errorf("代码列可读时不应二次识别，实际调用 %d 次", rec.calls)
	}
}

func TestProcessPage_RecognizerError(t *testing.T) {
	data, _ := encodePNG(testImage(100, 40))
	if _, err := ProcessPage(context.Background(), failingRecognizer{}, data, DefaultOptions()); err == nil {
		t.Fatal("识别器出错应返回错误")
	}
}
