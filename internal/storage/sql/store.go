package sql

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store 对投递引擎数据库的只读访问（支持 MySQL 5.7+ 和 PostgreSQL）。
//
// schema 属于引擎，随部署版本漂移；本层绝不迁移、绝不写入。
// 原生 *sql.DB 用于元数据探测和分区扫描，gorm 句柄只用于
// 邮件记录的读取与聚合。
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB
	driverName string // "mysql" or "postgres"
	log        *zap.Logger
}

// NewStore 连接引擎数据库。
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
	log *zap.Logger,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	if driverName == "mysql" {
		gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: db}), gormConfig)
	} else {
		gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	return &Store{
		db:         db,
		gormDB:     gormDB,
		driverName: driverName,
		log:        log,
	}, nil
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 检查数据库健康状态。
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}

// placeholder 根据数据库类型返回参数占位符。
func (s *Store) placeholder(n int) string {
	if s.driverName == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quoteIdentifier 按方言引用标识符。
//
// 只允许对已通过白名单校验的分区名调用；任意外部字符串
// 不得经由此函数进入 SQL 文本。
func (s *Store) quoteIdentifier(name string) string {
	if s.driverName == "postgres" {
		return `"` + name + `"`
	}
	return "`" + name + "`"
}
