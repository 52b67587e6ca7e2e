package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Report   ReportConfig   `mapstructure:"report"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	BaseURL   string          `mapstructure:"base_url"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 登录/上传接口限流（滑动窗口）
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置；Addr 为空时不连接
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Outputs 日志输出目标（stdout / stderr / 文件路径），为空时写 stdout
	Outputs []string `mapstructure:"outputs"`
}

// OCRConfig 成绩单识别配置
type OCRConfig struct {
	Languages             []string `mapstructure:"languages"`
	TessdataPrefix        string   `mapstructure:"tessdata_prefix"`
	MinConfidence         float64  `mapstructure:"min_confidence"`
	CodeColumnTolerance   float64  `mapstructure:"code_column_tolerance"`
	GradeColumnTolerance  float64  `mapstructure:"grade_column_tolerance"`
	CreditColumnTolerance float64  `mapstructure:"credit_column_tolerance"`
	NameColumnTolerance   float64  `mapstructure:"name_column_tolerance"`
	RowGapRatio           float64  `mapstructure:"row_gap_ratio"`
	Rescan                bool     `mapstructure:"rescan"`
	RescanScale           int      `mapstructure:"rescan_scale"`
}

// UploadConfig 上传文件配置
type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
	MaxFiles int    `mapstructure:"max_files"`
}

// WorkerConfig 后台识别任务配置
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	QueueSize   int           `mapstructure:"queue_size"`
	QueueKey    string        `mapstructure:"queue_key"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
}

// AnalysisConfig 드볼 判定参数
type AnalysisConfig struct {
	BreadthMinAreas            int `mapstructure:"breadth_min_areas"`
	BreadthExceptionCredit     int `mapstructure:"breadth_exception_credit"`
	BreadthExceptionAreaCredit int `mapstructure:"breadth_exception_area_credit"`
}

// ReportConfig 报表导出配置
type ReportConfig struct {
	// FontPath PDF 使用的 TTF 字体（需支持韩文）；为空时使用内置字体，仅能输出 ASCII
	FontPath string `mapstructure:"font_path"`
}

// defaults 未在配置文件与环境变量中出现时使用的值
var defaults = map[string]any{
	"server.port":                8080,
	"server.base_url":            "http://localhost:8080",
	"server.cors.allow_origins":  []string{"http://localhost:5173"},
	"server.rate_limit.requests": 20,
	"server.rate_limit.window":   "1m",

	"db.host":               "localhost",
	"db.port":               5432,
	"db.name":               "gradcheck",
	"db.user":               "postgres",
	"db.sslmode":            "disable",
	"db.timezone":           "Asia/Seoul",
	"db.max_open_conns":     25,
	"db.max_idle_conns":     10,
	"db.conn_max_lifetime":  60,
	"db.conn_max_idle_time": 30,

	"redis.addr": "localhost:6379",
	"redis.db":   0,

	"auth.access_token_ttl": "2h",
	"auth.issuer":           "gradcheck",

	"log.level":   "info",
	"log.format":  "json",
	"log.outputs": []string{"stdout"},

	"ocr.languages":               []string{"kor", "eng"},
	"ocr.min_confidence":          0.15,
	"ocr.code_column_tolerance":   40,
	"ocr.grade_column_tolerance":  40,
	"ocr.credit_column_tolerance": 30,
	"ocr.name_column_tolerance":   120,
	"ocr.row_gap_ratio":           0.7,
	"ocr.rescan":                  true,
	"ocr.rescan_scale":            4,

	"upload.dir":       "./uploads",
	"upload.max_bytes": 20 << 20,
	"upload.max_files": 10,

	"worker.concurrency": 2,
	"worker.queue_size":  100,
	"worker.queue_key":   "gradcheck:ocr:jobs",
	"worker.job_timeout": "5m",

	"analysis.breadth_min_areas":             6,
	"analysis.breadth_exception_credit":      17,
	"analysis.breadth_exception_area_credit": 2,
}

// Load 读取配置：环境变量（GRADCHECK_ 前缀）> 配置文件 > defaults。
// path 为空时在 ./config 与 . 下查找 config.yaml，找不到不算错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GRADCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 一次返回全部不合法项
func (c *Config) Validate() error {
	var errs []error
	check := func(bad bool, format string, args ...any) {
		if bad {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(len(c.Auth.JWTSecret) < 16, "auth.jwt_secret 至少 16 字符")
	check(c.Server.Port <= 0 || c.Server.Port > 65535, "server.port 超出范围: %d", c.Server.Port)
	check(c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1, "ocr.min_confidence 必须在 0-1 之间")
	check(c.OCR.RowGapRatio <= 0, "ocr.row_gap_ratio 必须大于 0")
	check(c.Worker.Concurrency <= 0, "worker.concurrency 必须大于 0")
	check(c.Upload.MaxBytes <= 0, "upload.max_bytes 必须大于 0")
	check(c.Upload.MaxFiles <= 0, "upload.max_files 必须大于 0")
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}
