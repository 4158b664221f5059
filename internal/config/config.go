package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数。
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// DatabaseConfig 定义投递引擎数据库的连接配置（支持 MySQL 和 PostgreSQL）。
type DatabaseConfig struct {
	Type            string        // 数据库类型: "mysql" 或 "postgres"
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RawStoreConfig 定义原始报文分区的存储后端。
type RawStoreConfig struct {
	// Backend 分区后端: "sql"（引擎库内日期分区表）或 "s3"（日期前缀对象）
	Backend   string
	Endpoint  string // S3 端点，留空使用 AWS 默认
	Region    string // S3 区域
	Bucket    string // S3 桶名
	AccessKey string
	SecretKey string
}

// RedisConfig 定义 Redis 缓存服务配置。
// Address 留空时禁用统计快照缓存。
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration // 快照过期时间，默认 30s
}

// CORSConfig 定义跨域资源共享 (CORS) 配置。
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置。
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	LogFile     string // 日志文件路径，留空只输出到 stdout
}

// RateLimitConfig 定义管理 API 的限流配置。
type RateLimitConfig struct {
	RPS   float64 // 每 IP 每秒请求数
	Burst int     // 突发容量
}

// Config 是系统核心配置的根结构体。
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RawStore  RawStoreConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// Load 从环境变量和 .env 文件加载系统配置。
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: MAILADMIN_
// 例如: MAILADMIN_SERVER_HOST, MAILADMIN_DATABASE_DSN
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetEnvPrefix("mailadmin")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.type", "mysql")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("rawstore.backend", "sql")
	viper.SetDefault("rawstore.endpoint", "")
	viper.SetDefault("rawstore.region", "")
	viper.SetDefault("rawstore.bucket", "")
	viper.SetDefault("rawstore.access_key", "")
	viper.SetDefault("rawstore.secret_key", "")
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", "30s")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("ratelimit.rps", 50)
	viper.SetDefault("ratelimit.burst", 100)

	dbType := viper.GetString("database.type")
	if dbType != "mysql" && dbType != "postgres" {
		return nil, fmt.Errorf("invalid database.type: %s (supported: mysql, postgres)", dbType)
	}
	if viper.GetString("database.dsn") == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	rawBackend := viper.GetString("rawstore.backend")
	if rawBackend != "sql" && rawBackend != "s3" {
		return nil, fmt.Errorf("invalid rawstore.backend: %s (supported: sql, s3)", rawBackend)
	}
	if rawBackend == "s3" && viper.GetString("rawstore.bucket") == "" {
		return nil, fmt.Errorf("rawstore.bucket is required when rawstore.backend is s3")
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("redis.ttl"))
	if err != nil {
		cacheTTL = 30 * time.Second
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	rps := viper.GetFloat64("ratelimit.rps")
	if rps <= 0 {
		rps = 50
	}
	burst := viper.GetInt("ratelimit.burst")
	if burst <= 0 {
		burst = 100
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Type:            dbType,
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		RawStore: RawStoreConfig{
			Backend:   rawBackend,
			Endpoint:  viper.GetString("rawstore.endpoint"),
			Region:    viper.GetString("rawstore.region"),
			Bucket:    viper.GetString("rawstore.bucket"),
			AccessKey: viper.GetString("rawstore.access_key"),
			SecretKey: viper.GetString("rawstore.secret_key"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			TTL:      cacheTTL,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			LogFile:     viper.GetString("log.file"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片。
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件。
// 文件不存在时静默失败；已存在的环境变量优先级更高。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
