// Package config 负责加载服务配置
// 配置来源依次为：默认值、config.toml、KEEPSAKE_ 前缀的环境变量
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用总配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Settings SettingsConfig `mapstructure:"settings"`
	Site     SiteConfig     `mapstructure:"site"`
	Board    BoardConfig    `mapstructure:"board"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // 秒
	WriteTimeout int    `mapstructure:"write_timeout"` // 秒，SSE 连接不受此限制
	EnableHTTPS  bool   `mapstructure:"enable_https"`
	EnableHTTP2  bool   `mapstructure:"enable_http2"`
	TLSCertFile  string `mapstructure:"tls_cert_file"`
	TLSKeyFile   string `mapstructure:"tls_key_file"`
	Mode         string `mapstructure:"mode"` // gin 模式: debug, release, test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogSQL          bool   `mapstructure:"log_sql"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// StorageConfig 对象存储配置
// Provider 可选 local, aliyun, tencent, qiniu, minio
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	Folder        string `mapstructure:"folder"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Endpoint      string `mapstructure:"endpoint"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	LocalDir      string `mapstructure:"local_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// RedisConfig 跨实例变更通知配置，Addr 为空时仅在本进程内广播
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// AdminConfig 管理后台配置
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// SettingsConfig 界面状态持久化配置
type SettingsConfig struct {
	File  string `mapstructure:"file"`
	Watch bool   `mapstructure:"watch"`
}

// SiteConfig 站点内容配置
type SiteConfig struct {
	Name         string `mapstructure:"name"`
	BirthdayDate string `mapstructure:"birthday_date"` // RFC3339
	Hostname     string `mapstructure:"hostname"`
}

// BoardConfig 展示面板会话配置
type BoardConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", true)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/keepsake.db")
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "logs/keepsake.log")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.folder", "media")
	v.SetDefault("storage.local_dir", "data/uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080/uploads")
	v.SetDefault("storage.max_upload_size", 200*1024*1024)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "keepsake:changes")

	// 未设置默认值的键不会被 AutomaticEnv 识别
	v.SetDefault("admin.token", "")

	v.SetDefault("settings.file", "data/settings.toml")
	v.SetDefault("settings.watch", true)

	v.SetDefault("site.name", "Annielyn")
	v.SetDefault("site.birthday_date", "2025-10-23T00:00:00+08:00")
	v.SetDefault("site.hostname", "https://lava.github.io")

	v.SetDefault("board.session_ttl", 30*time.Minute)
}

// Load 加载配置
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom 从指定文件加载配置，path 为空时按默认路径查找 config.toml
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("KEEPSAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// BirthdayTime 解析生日时间
func (c SiteConfig) BirthdayTime() (time.Time, error) {
	return time.Parse(time.RFC3339, c.BirthdayDate)
}
