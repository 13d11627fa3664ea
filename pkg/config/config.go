package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	appCnf        *AppConfig
	dbTablePrefix string
)

type AppConfig struct {
	RDS      *redis.Client
	DB       *gorm.DB
	Logger   *logrus.Logger
	NatsConn *nats.Conn

	RootWorkingDir     string
	Server             ServerInfo             `yaml:"server"`
	Client             ClientInfo             `yaml:"client"`
	LogSettings        LogSettings            `yaml:"log_settings"`
	Model              ModelInfo              `yaml:"model"`
	Audio              AudioSettings          `yaml:"audio"`
	AudioPreprocessing PreprocessingSettings  `yaml:"audio_preprocessing"`
	AudioSegmentation  SegmentationSettings   `yaml:"audio_segmentation"`
	Streaming          StreamingSettings      `yaml:"streaming"`
	Processing         ProcessingSettings     `yaml:"processing"`
	Monitoring         MonitoringSettings     `yaml:"monitoring"`
	Inference          InferenceInfo          `yaml:"inference"`
	RedisInfo          RedisInfo              `yaml:"redis"`
	DatabaseInfo       DatabaseInfo           `yaml:"database"`
	NatsInfo           NatsInfo               `yaml:"nats"`
}

type ServerInfo struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

type ClientInfo struct {
	ApiKey         string         `yaml:"api_key"`
	Secret         string         `yaml:"secret"`
	TokenValidity  *time.Duration `yaml:"token_validity"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
	ProxyHeader    string         `yaml:"proxy_header"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
	LogLevel   *string `yaml:"log_level"`
}

type ModelInfo struct {
	Name            string `yaml:"name"`
	Device          string `yaml:"device"`
	TrustRemoteCode bool   `yaml:"trust_remote_code"`
}

type AudioSettings struct {
	MaxFileSizeMB      uint64   `yaml:"max_file_size_mb"`
	MaxDurationMinutes float64  `yaml:"max_duration_minutes"`
	SupportedFormats   []string `yaml:"supported_formats"`
	TempDir            string   `yaml:"temp_dir"`
	SegmentLength      float64  `yaml:"segment_length"`
	OverlapLength      float64  `yaml:"overlap_length"`
	TargetSampleRate   int      `yaml:"target_sample_rate"`
	TargetChannels     int      `yaml:"target_channels"`
}

type PreprocessingSettings struct {
	TargetSampleRate     int     `yaml:"target_sample_rate"`
	TargetChannels       int     `yaml:"target_channels"`
	TargetFormat         string  `yaml:"target_format"`
	EnableNoiseReduction bool    `yaml:"enable_noise_reduction"`
	EnableNormalization  bool    `yaml:"enable_normalization"`
	SilenceThresholdDB   float64 `yaml:"silence_threshold_db"`
}

type SegmentationSettings struct {
	SegmentLengthSeconds float64 `yaml:"segment_length_seconds"`
	OverlapSeconds       float64 `yaml:"overlap_seconds"`
	MinSegmentLength     float64 `yaml:"min_segment_length"`
	MaxSilenceLength     float64 `yaml:"max_silence_length"`
	FadeDuration         float64 `yaml:"fade_duration"`
}

type StreamingSettings struct {
	BatchSize                   int     `yaml:"batch_size"`
	BatchTimeoutMs              int     `yaml:"batch_timeout_ms"`
	FirstSegmentPriority        int     `yaml:"first_segment_priority"`
	NormalSegmentPriority       int     `yaml:"normal_segment_priority"`
	MaxQueueSize                int     `yaml:"max_queue_size"`
	QueueCheckIntervalMs        int     `yaml:"queue_check_interval_ms"`
	MaxConcurrentBatches        int     `yaml:"max_concurrent_batches"`
	GPUMemoryThreshold          float64 `yaml:"gpu_memory_threshold"`
	EnablePerformanceMonitoring bool    `yaml:"enable_performance_monitoring"`
}

type ProcessingSettings struct {
	TimeoutSeconds     int `yaml:"timeout_seconds"`
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`
	ChunkSizeMB        int `yaml:"chunk_size_mb"`
}

type MonitoringSettings struct {
	EnableMetrics          bool `yaml:"enable_metrics"`
	MetricsIntervalSeconds int  `yaml:"metrics_interval_seconds"`
	LogBatchPerformance    bool `yaml:"log_batch_performance"`
}

type InferenceInfo struct {
	Provider       string         `yaml:"provider"`
	BaseUrl        string         `yaml:"base_url"`
	ApiKey         string         `yaml:"api_key"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	MaxRetries     int            `yaml:"max_retries"`
	Azure          AzureSpeechInfo `yaml:"azure"`
}

type AzureSpeechInfo struct {
	SubscriptionKey string `yaml:"subscription_key"`
	ServiceRegion   string `yaml:"service_region"`
}

type DatabaseInfo struct {
	DriverName      string          `yaml:"driver_name"`
	Host            string          `yaml:"host"`
	Port            int32           `yaml:"port"`
	Username        string          `yaml:"username"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"db"`
	Prefix          string          `yaml:"prefix"`
	Charset         *string         `yaml:"charset"`
	Loc             *string         `yaml:"loc"`
	ConnMaxLifetime *time.Duration  `yaml:"conn_max_lifetime"`
	MaxOpenConns    *int            `yaml:"max_open_conns"`
	Replicas        []ReplicaDBInfo `yaml:"replicas"`
}

// ReplicaDBInfo holds connection details for a read replica database.
type ReplicaDBInfo struct {
	Host     string `yaml:"host"`
	Port     int32  `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisInfo struct {
	Host              string   `yaml:"host"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DBName            int      `yaml:"db"`
	UseTLS            bool     `yaml:"use_tls"`
	MasterName        string   `yaml:"sentinel_master_name"`
	SentinelUsername  string   `yaml:"sentinel_username"`
	SentinelPassword  string   `yaml:"sentinel_password"`
	SentinelAddresses []string `yaml:"sentinel_addresses"`
}

type NatsInfo struct {
	Enabled       bool     `yaml:"enabled"`
	NatsUrls      []string `yaml:"nats_urls"`
	SubjectPrefix string   `yaml:"subject_prefix"`
}

func New(cnf *AppConfig) (*AppConfig, error) {
	if cnf.Server.Host == "" {
		cnf.Server.Host = "0.0.0.0"
	}
	if cnf.Server.Port == 0 {
		cnf.Server.Port = 8000
	}

	// default validation of token is 30 minutes
	if cnf.Client.TokenValidity == nil || *cnf.Client.TokenValidity <= 0 {
		validity := time.Minute * 30
		cnf.Client.TokenValidity = &validity
	}

	if cnf.Model.Name == "" {
		cnf.Model.Name = "iic/SenseVoiceSmall"
	}
	if cnf.Model.Device == "" {
		cnf.Model.Device = "cpu"
	}

	applyAudioDefaults(cnf)
	applyStreamingDefaults(cnf)

	if cnf.Processing.TimeoutSeconds == 0 {
		cnf.Processing.TimeoutSeconds = 1800
	}
	if cnf.Processing.MaxConcurrentTasks == 0 {
		cnf.Processing.MaxConcurrentTasks = 10
	}
	if cnf.Processing.ChunkSizeMB == 0 {
		cnf.Processing.ChunkSizeMB = 1
	}
	if cnf.Monitoring.MetricsIntervalSeconds == 0 {
		cnf.Monitoring.MetricsIntervalSeconds = 30
	}

	if cnf.Inference.Provider == "" {
		cnf.Inference.Provider = "sensevoice"
	}
	if cnf.Inference.TimeoutSeconds == 0 {
		cnf.Inference.TimeoutSeconds = 60
	}
	if cnf.Inference.MaxRetries == 0 {
		cnf.Inference.MaxRetries = 3
	}

	tempDir := cnf.Audio.TempDir
	if strings.HasPrefix(tempDir, "./") {
		tempDir = filepath.Join(cnf.RootWorkingDir, tempDir)
		cnf.Audio.TempDir = tempDir
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory %s: %w", tempDir, err)
	}

	if cnf.DatabaseInfo.Prefix != "" {
		dbTablePrefix = cnf.DatabaseInfo.Prefix
	}

	// set this config for global usage
	appCnf = cnf
	return cnf, nil
}

func applyAudioDefaults(cnf *AppConfig) {
	if cnf.Audio.MaxFileSizeMB == 0 {
		cnf.Audio.MaxFileSizeMB = 500
	}
	if cnf.Audio.MaxDurationMinutes == 0 {
		cnf.Audio.MaxDurationMinutes = 120
	}
	if len(cnf.Audio.SupportedFormats) == 0 {
		cnf.Audio.SupportedFormats = []string{"wav", "mp3", "m4a", "flac", "aac"}
	}
	if cnf.Audio.TempDir == "" {
		cnf.Audio.TempDir = "./temp"
	}
	if cnf.Audio.SegmentLength == 0 {
		cnf.Audio.SegmentLength = 10.0
	}
	if cnf.Audio.OverlapLength == 0 {
		cnf.Audio.OverlapLength = 2.0
	}
	if cnf.Audio.TargetSampleRate == 0 {
		cnf.Audio.TargetSampleRate = 16000
	}
	if cnf.Audio.TargetChannels == 0 {
		cnf.Audio.TargetChannels = 1
	}

	if cnf.AudioPreprocessing.TargetSampleRate == 0 {
		cnf.AudioPreprocessing.TargetSampleRate = cnf.Audio.TargetSampleRate
	}
	if cnf.AudioPreprocessing.TargetChannels == 0 {
		cnf.AudioPreprocessing.TargetChannels = cnf.Audio.TargetChannels
	}
	if cnf.AudioPreprocessing.TargetFormat == "" {
		cnf.AudioPreprocessing.TargetFormat = "wav"
	}
	if cnf.AudioPreprocessing.SilenceThresholdDB == 0 {
		cnf.AudioPreprocessing.SilenceThresholdDB = -40.0
	}

	if cnf.AudioSegmentation.SegmentLengthSeconds == 0 {
		cnf.AudioSegmentation.SegmentLengthSeconds = cnf.Audio.SegmentLength
	}
	if cnf.AudioSegmentation.OverlapSeconds == 0 {
		cnf.AudioSegmentation.OverlapSeconds = cnf.Audio.OverlapLength
	}
	if cnf.AudioSegmentation.MinSegmentLength == 0 {
		cnf.AudioSegmentation.MinSegmentLength = 3.0
	}
	if cnf.AudioSegmentation.MaxSilenceLength == 0 {
		cnf.AudioSegmentation.MaxSilenceLength = 2.0
	}
	if cnf.AudioSegmentation.FadeDuration == 0 {
		cnf.AudioSegmentation.FadeDuration = 0.01
	}
}

func applyStreamingDefaults(cnf *AppConfig) {
	if cnf.Streaming.BatchSize == 0 {
		cnf.Streaming.BatchSize = 128
	}
	if cnf.Streaming.BatchTimeoutMs == 0 {
		cnf.Streaming.BatchTimeoutMs = 200
	}
	if cnf.Streaming.FirstSegmentPriority == 0 {
		cnf.Streaming.FirstSegmentPriority = 10
	}
	if cnf.Streaming.NormalSegmentPriority == 0 {
		cnf.Streaming.NormalSegmentPriority = 1
	}
	if cnf.Streaming.MaxQueueSize == 0 {
		cnf.Streaming.MaxQueueSize = 1000
	}
	if cnf.Streaming.QueueCheckIntervalMs == 0 {
		cnf.Streaming.QueueCheckIntervalMs = 50
	}
	if cnf.Streaming.MaxConcurrentBatches == 0 {
		cnf.Streaming.MaxConcurrentBatches = 2
	}
	if cnf.Streaming.GPUMemoryThreshold == 0 {
		cnf.Streaming.GPUMemoryThreshold = 0.9
	}
}

func GetConfig() *AppConfig {
	return appCnf
}

func GetLogger() *logrus.Logger {
	if appCnf != nil {
		return appCnf.Logger
	}
	return logrus.StandardLogger()
}

func FormatDBTable(table string) string {
	if dbTablePrefix != "" {
		return dbTablePrefix + table
	}
	return table
}
