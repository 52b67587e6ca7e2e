package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "0123456789abcdef0123"
ocr:
  min_confidence: 0.3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际 %d", cfg.Server.Port)
	}
	if cfg.OCR.MinConfidence != 0.3 {
		t.Errorf("期望 min_confidence=0.3，实际 %v", cfg.OCR.MinConfidence)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Errorf("期望 TTL=2h，实际 %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Analysis.BreadthExceptionCredit != 17 || cfg.Analysis.BreadthMinAreas != 6 {
		t.Errorf("드볼 默认参数错误: %+v", cfg.Analysis)
	}
	if len(cfg.OCR.Languages) != 2 {
		t.Errorf("期望默认语言 kor+eng，实际 %v", cfg.OCR.Languages)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: \"0123456789abcdef0123\"\n")
	t.Setenv("GRADCHECK_SERVER_PORT", "9090")
	t.Setenv("GRADCHECK_WORKER_CONCURRENCY", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Worker.Concurrency != 4 {
		t.Errorf("环境变量未生效: port=%d concurrency=%d", cfg.Server.Port, cfg.Worker.Concurrency)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			OCR:    OCRConfig{MinConfidence: 0.15, RowGapRatio: 0.7},
			Worker: WorkerConfig{Concurrency: 1},
			Upload: UploadConfig{MaxBytes: 1, MaxFiles: 1},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cases := map[string]func(c *Config){
		"空密钥":   func(c *Config) { c.Auth.JWTSecret = "" },
		"短密钥":   func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":  func(c *Config) { c.Server.Port = 70000 },
		"置信度越界": func(c *Config) { c.OCR.MinConfidence = 1.5 },
		"并发为零":  func(c *Config) { c.Worker.Concurrency = 0 },
		"上传上限":  func(c *Config) { c.Upload.MaxBytes = 0 },
		"文件数为零": func(c *Config) { c.Upload.MaxFiles = 0 },
		"行距为零":  func(c *Config) { c.OCR.RowGapRatio = 0 },
	}
	for name, mutate := range cases {
		c := base()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: 期望校验失败", name)
		}
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	err := (&Config{}).Validate()
	if err == nil {
		t.Fatal("空配置应校验失败")
	}
	for _, key := range []string{"auth.jwt_secret", "server.port", "worker.concurrency"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("错误信息应包含 %s: %v", key, err)
		}
	}
}
