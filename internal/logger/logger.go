package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 日志配置
type Config struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 控制台编码 + 错误堆栈
	LogFile     string // 日志文件路径，留空只输出到 stdout
	MaxSize     int    // 单个日志文件最大尺寸 (MB)
	MaxBackups  int    // 保留的轮转文件数
	MaxAge      int    // 轮转文件保留天数
	Compress    bool   // 是否压缩轮转文件
}

// New 创建日志记录器。
// LogFile 非空时同时输出到轮转文件和 stdout。
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Development {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writeSyncer := zapcore.AddSync(os.Stdout)
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, err
		}

		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writeSyncer = zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(rotator),
			zapcore.AddSync(os.Stdout),
		)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...), nil
}

// NewFromApp 按应用日志配置创建日志记录器，使用生产级轮转默认值。
func NewFromApp(level string, development bool, logFile string) *zap.Logger {
	cfg := Config{
		Level:       level,
		Development: development,
		LogFile:     logFile,
		MaxSize:     100, // 100MB
		MaxBackups:  3,
		MaxAge:      28, // 28 天
		Compress:    true,
	}

	log, err := New(cfg)
	if err != nil {
		// 创建失败时退回空日志记录器，不阻止启动
		return zap.NewNop()
	}

	return log
}
