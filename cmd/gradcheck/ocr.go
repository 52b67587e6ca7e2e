package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/ocr"
)

type ocrFlags struct {
	languages     []string
	tessdata      string
	minConfidence float64
	noRescan      bool
	text          bool
	group         bool
}

func newOCRCmd() *cobra.Command {
	var f ocrFlags
	defaults := ocr.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "ocr <image>...",
		Short: "Reconstruct course rows from transcript page images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := ocr.NewTesseractRecognizer(ocr.TesseractConfig{
				Languages:      f.languages,
				TessdataPrefix: f.tessdata,
			})
			records, err := recognizeFiles(cmd, rec, args, f.options())
			if err != nil {
				return err
			}
			return writeRecords(cmd, records, f)
		},
	}

	cmd.Flags().StringSliceVar(&f.languages, "lang", []string{"kor", "eng"}, "tesseract languages")
	cmd.Flags().StringVar(&f.tessdata, "tessdata", "", "tessdata directory (default: tesseract's own)")
	cmd.Flags().Float64Var(&f.minConfidence, "min-confidence", defaults.MinConfidence, "drop OCR items below this confidence (0-1)")
	cmd.Flags().BoolVar(&f.noRescan, "no-rescan", false, "disable region rescan for unreadable course codes")
	cmd.Flags().BoolVar(&f.text, "text", false, "print plain text instead of JSON")
	cmd.Flags().BoolVar(&f.group, "group", false, "with --text, group rows by semester")

	return cmd
}

func (f ocrFlags) options() ocr.Options {
	opts := ocr.DefaultOptions()
	opts.MinConfidence = f.minConfidence
	opts.Rescan = !f.noRescan
	return opts
}

// recognizeFiles 逐页识别后合并；单页失败直接返回错误，便于命令行定位问题图片
func recognizeFiles(cmd *cobra.Command, rec ocr.Recognizer, paths []string, opts ocr.Options) ([]model.CourseRecord, error) {
	pages := make([][]model.CourseRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows, err := ocr.ProcessPage(cmd.Context(), rec, data, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		pages = append(pages, rows)
	}
	return ocr.MergePages(pages...), nil
}

func writeRecords(cmd *cobra.Command, records []model.CourseRecord, f ocrFlags) error {
	out := cmd.OutOrStdout()
	if f.text {
		_, err := fmt.Fprintln(out, ocr.FormatRows(records, f.group))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}
