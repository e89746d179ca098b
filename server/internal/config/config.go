package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"contentgate/server/internal/budget"
)

// Config 全局配置
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Budget     BudgetConfig     `yaml:"budget" toml:"budget"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing" toml:"tracing"`
	Watch      WatchConfig      `yaml:"watch" toml:"watch"`
	Intake     IntakeConfig     `yaml:"intake" toml:"intake"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" toml:"host"`
	Port         int           `yaml:"port" toml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	// AllowedOrigins 允许跨域访问的前端地址（作者工具）。
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	// StreamIdleTimeout 实时预览 WebSocket 的空闲超时。
	StreamIdleTimeout time.Duration `yaml:"stream_idle_timeout" toml:"stream_idle_timeout"`
}

// Addr 返回 host:port。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BudgetConfig 体积预算与调优阈值，单位字节/秒。零值表示使用契约默认值。
type BudgetConfig struct {
	DialogueSceneMax    int     `yaml:"dialogue_scene_max" toml:"dialogue_scene_max"`
	QuizSceneMax        int     `yaml:"quiz_scene_max" toml:"quiz_scene_max"`
	AssessmentSceneMax  int     `yaml:"assessment_scene_max" toml:"assessment_scene_max"`
	TotalJSONMax        int     `yaml:"total_json_max" toml:"total_json_max"`
	MaxQuizQuestions    int     `yaml:"max_quiz_questions" toml:"max_quiz_questions"`
	MaxSceneDurationSec float64 `yaml:"max_scene_duration_sec" toml:"max_scene_duration_sec"`
	MaxTurnTextChars    int     `yaml:"max_turn_text_chars" toml:"max_turn_text_chars"`
	LargeContentRatio   float64 `yaml:"large_content_ratio" toml:"large_content_ratio"`
}

type ValidationConfig struct {
	Timeout          time.Duration `yaml:"timeout" toml:"timeout"`
	BatchConcurrency int           `yaml:"batch_concurrency" toml:"batch_concurrency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
	// SampleRatio 0-1，超出范围会被截断。
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

type IntakeConfig struct {
	// MaxBodyBytes 单次请求体上限，需大于 TotalJSONMax 才能让超限文档得到报告而不是 413。
	MaxBodyBytes int64 `yaml:"max_body_bytes" toml:"max_body_bytes"`
	// MaxBatchDocuments 批量接口单次最多文档数。
	MaxBatchDocuments int `yaml:"max_batch_documents" toml:"max_batch_documents"`
}

// Default 返回可以直接运行的默认配置。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			AllowedOrigins:    []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			StreamIdleTimeout: 2 * time.Minute,
		},
		Validation: ValidationConfig{
			Timeout:          budget.ValidationTimeout,
			BatchConcurrency: 4,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Tracing: TracingConfig{ServiceName: "contentgate", SampleRatio: 1},
		Watch:   WatchConfig{Debounce: 300 * time.Millisecond},
		Intake: IntakeConfig{
			MaxBodyBytes:      4 << 20,
			MaxBatchDocuments: 50,
		},
	}
}

// Load 从文件加载配置。扩展名为 .toml 时按 TOML 解析，否则按 YAML。
// 文件中未出现的字段保留 Default() 的值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖部署相关的配置。
func (c *Config) ApplyEnv() {
	if addr := os.Getenv("CONTENTGATE_ADDR"); addr != "" {
		if host, port, err := net.SplitHostPort(addr); err == nil {
			if p, err := strconv.Atoi(port); err == nil {
				c.Server.Host = host
				c.Server.Port = p
			}
		}
	}
	if level := os.Getenv("CONTENTGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("CONTENTGATE_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_ENABLED"))) {
	case "1", "true", "yes", "on":
		c.Tracing.Enabled = true
	case "0", "false", "no", "off":
		c.Tracing.Enabled = false
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	b := c.Budget
	for name, v := range map[string]int{
		"dialogue_scene_max":   b.DialogueSceneMax,
		"quiz_scene_max":       b.QuizSceneMax,
		"assessment_scene_max": b.AssessmentSceneMax,
		"total_json_max":       b.TotalJSONMax,
		"max_quiz_questions":   b.MaxQuizQuestions,
		"max_turn_text_chars":  b.MaxTurnTextChars,
	} {
		if v < 0 {
			return fmt.Errorf("budget %s must not be negative", name)
		}
	}
	if b.LargeContentRatio < 0 || b.LargeContentRatio > 1 {
		return fmt.Errorf("budget large_content_ratio must be within 0-1, got %v", b.LargeContentRatio)
	}
	if c.Validation.Timeout < 0 {
		return fmt.Errorf("validation timeout must not be negative")
	}
	limits := c.Limits()
	if c.Intake.MaxBodyBytes > 0 && c.Intake.MaxBodyBytes <= int64(limits.TotalJSONMax) {
		return fmt.Errorf("intake max_body_bytes (%d) must exceed total_json_max (%d)", c.Intake.MaxBodyBytes, limits.TotalJSONMax)
	}
	return nil
}

// Limits 把配置转换为校验器使用的预算表，零值字段回落到契约默认值。
func (c *Config) Limits() budget.Limits {
	l := budget.DefaultLimits()
	b := c.Budget
	if b.DialogueSceneMax > 0 {
		l.DialogueSceneMax = b.DialogueSceneMax
	}
	if b.QuizSceneMax > 0 {
		l.QuizSceneMax = b.QuizSceneMax
	}
	if b.AssessmentSceneMax > 0 {
		l.AssessmentSceneMax = b.AssessmentSceneMax
	}
	if b.TotalJSONMax > 0 {
		l.TotalJSONMax = b.TotalJSONMax
	}
	if b.MaxQuizQuestions > 0 {
		l.MaxQuizQuestions = b.MaxQuizQuestions
	}
	if b.MaxSceneDurationSec > 0 {
		l.MaxSceneDurationSec = b.MaxSceneDurationSec
	}
	if b.MaxTurnTextChars > 0 {
		l.MaxTurnTextChars = b.MaxTurnTextChars
	}
	if b.LargeContentRatio > 0 {
		l.LargeContentRatio = b.LargeContentRatio
	}
	if c.Validation.Timeout > 0 {
		l.ValidationTimeout = c.Validation.Timeout
	}
	return l
}
