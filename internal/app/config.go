package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RSC struct {
	URL           string `yaml:"url"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	StaticToken   string `yaml:"static_token"`
	TimeoutSecond int    `yaml:"timeout_second"`
}

type SMTP struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type Store struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batch_size"`
	Retry     Retry  `yaml:"retry"`
}

type Retry struct {
	Attempts       int `yaml:"attempts"`
	BackoffSeconds int `yaml:"backoff_seconds"`
}

type HTTP struct {
	Listen string `yaml:"listen"`
}

// ReportJob 描述一份报表的生成参数，cron 非空时由调度器定时执行。
type ReportJob struct {
	Name             string   `yaml:"name"`
	Cron             string   `yaml:"cron"`
	Columns          []string `yaml:"columns"`
	SortBy           string   `yaml:"sort_by"`
	SortDescending   bool     `yaml:"sort_descending"`
	Email            bool     `yaml:"email"`
	Store            bool     `yaml:"store"`
	DaysToCapture    int      `yaml:"days_to_capture"`
	HoursToCapture   int      `yaml:"hours_to_capture"`
	MinutesToCapture int      `yaml:"minutes_to_capture"`
	EventStatus      string   `yaml:"event_status"`
	EventSeverity    string   `yaml:"event_severity"`
}

type Config struct {
	RSC       RSC         `yaml:"rsc"`
	SMTP      SMTP        `yaml:"smtp"`
	Store     Store       `yaml:"store"`
	HTTP      HTTP        `yaml:"http"`
	OutputDir string      `yaml:"output_dir"`
	Reports   []ReportJob `yaml:"reports"`
}

// LoadConfig 从文件加载配置并补默认值。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "reports"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "rscreport.db"
	}
	if cfg.Store.BatchSize <= 0 {
		cfg.Store.BatchSize = 200
	}
	return cfg, nil
}

// JobByName 返回配置中同名的报表任务；未配置时返回只带名字的默认任务。
func (c Config) JobByName(name string) ReportJob {
	for _, job := range c.Reports {
		if job.Name == name {
			return job
		}
	}
	return ReportJob{Name: name}
}
