package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"gradcheck/backend/internal/analysis"
	"gradcheck/backend/internal/model"
)

type analyzeFlags struct {
	requirement string
	courses     string
	asJSON      bool
	policy      analysis.Policy
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	defaults := analysis.DefaultPolicy()

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Check a course list against a graduation requirement file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := loadRequirement(f.requirement)
			if err != nil {
				return err
			}
			records, err := loadCourses(f.courses)
			if err != nil {
				return err
			}

			a := analysis.New(analysis.FilterCountable(records), req, f.policy)
			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(a.Result)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderReport(a))
			return err
		},
	}

	cmd.Flags().StringVar(&f.requirement, "requirement", "", "graduation requirement TOML file")
	cmd.Flags().StringVar(&f.courses, "courses", "", "course records JSON (output of `gradcheck ocr`)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the raw result as JSON")
	cmd.Flags().IntVar(&f.policy.MinAreas, "breadth-min-areas", defaults.MinAreas, "드볼 areas that must be covered")
	cmd.Flags().IntVar(&f.policy.ExceptionCredit, "breadth-exception-credit", defaults.ExceptionCredit, "드볼 total credit that triggers the exception rule")
	cmd.Flags().IntVar(&f.policy.ExceptionAreaCredit, "breadth-exception-area-credit", defaults.ExceptionAreaCredit, "area credit required by the exception rule")
	_ = cmd.MarkFlagRequired("requirement")
	_ = cmd.MarkFlagRequired("courses")

	return cmd
}

// loadRequirement 读取 TOML 格式的毕业要求
func loadRequirement(path string) (*model.GraduationRequirement, error) {
	var req model.GraduationRequirement
	if _, err := toml.DecodeFile(path, &req); err != nil {
		return nil, fmt.Errorf("decode requirement %s: %w", path, err)
	}
	return &req, nil
}

// loadCourses 读取课程记录：接受裸数组，或带 courses 字段的对象（/transcripts/parsed 的 data）
func loadCourses(path string) ([]model.CourseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read courses %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)

	var records []model.CourseRecord
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode courses %s: %w", path, err)
		}
		return records, nil
	}

	var wrapped struct {
		Courses []model.CourseRecord `json:"courses"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode courses %s: %w", path, err)
	}
	return wrapped.Courses, nil
}
