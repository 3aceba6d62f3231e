// Package connection 封装数据库连接句柄：gorm 实例、元数据快照、缓存后端。
// 元数据加载流程：先做廉价指纹探测，缓存命中且指纹一致时直接复用快照，
// 否则完整反射并覆盖缓存。
package connection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/cache"
	"github.com/hatlonely/dbx/metadata"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

var ErrEmptySchema = errors.New("schema contains no tables")

// ConnectionOptions 数据库连接配置
type ConnectionOptions struct {
	// 数据库类型：mysql, postgres, sqlite
	Driver string `cfg:"driver" def:"mysql"`

	// 完整 DSN，非空时忽略下面的分字段配置
	DSN string `cfg:"dsn"`

	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port"`
	Database string `cfg:"database"`
	Username string `cfg:"username"`

	// 密码为空时交给驱动侧的密码文件机制（如 PostgreSQL 的 ~/.pgpass）
	Password string `cfg:"password"`

	// MySQL 连接字符集
	Charset string `cfg:"charset" def:"utf8mb4"`

	// PostgreSQL sslmode
	SSLMode string `cfg:"sslMode" def:"disable"`

	MaxOpenConns    int           `cfg:"maxOpenConns" def:"10"`
	MaxIdleConns    int           `cfg:"maxIdleConns" def:"5"`
	ConnMaxLifetime time.Duration `cfg:"connMaxLifetime"`

	// 元数据缓存名，为空则禁用缓存，每次启动都做完整反射
	CacheName string `cfg:"cacheName"`

	// 缓存后端配置，默认本地文件缓存
	Cache *cache.CacheOptions `cfg:"cache"`

	// 严格模式：反射结果为零张表时返回 ErrEmptySchema
	StrictSchema bool `cfg:"strictSchema"`

	// GORM 日志级别：silent, error, warn, info
	LogLevel string `cfg:"logLevel" def:"silent" validate:"omitempty,oneof=silent error warn info"`
}

// Connection 可复用的数据库句柄。
// 一个配置对应一个 Connection，进程内通过 Registry 复用，不重复建立连接。
type Connection struct {
	options *ConnectionOptions
	driver  dbx.Driver
	db      *gorm.DB
	cache   cache.Cache

	mu       sync.RWMutex
	snapshot *metadata.Snapshot
	models   []any

	schemaCache sync.Map
}

func NewConnectionWithOptions(options *ConnectionOptions) (*Connection, error) {
	if options == nil {
		return nil, errors.New("connection options is required")
	}
	if err := dbx.ValidateOptions(options); err != nil {
		return nil, errors.Wrap(err, "invalid connection options")
	}

	driver, err := dbx.ParseDriver(defaultString(options.Driver, "mysql"))
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(driver, options)
	if err != nil {
		return nil, err
	}

	gormLogger, err := newGormLogger(slog.Default(), options.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := openDialector(driver, dsn, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	sqlDB.SetMaxOpenConns(defaultInt(options.MaxOpenConns, 10))
	sqlDB.SetMaxIdleConns(defaultInt(options.MaxIdleConns, 5))
	if options.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(options.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "database is unreachable")
	}

	connection := &Connection{options: options, driver: driver, db: db}

	if options.CacheName != "" {
		metadataCache, err := cache.NewCacheWithOptions(options.Cache)
		if err != nil {
			sqlDB.Close()
			return nil, errors.Wrap(err, "failed to create metadata cache")
		}
		connection.cache = metadataCache
	}

	snapshot, err := connection.loadSnapshot(context.Background())
	if err != nil {
		connection.Close()
		return nil, err
	}
	if options.StrictSchema && snapshot.Empty() {
		connection.Close()
		return nil, errors.WithMessagef(ErrEmptySchema, "database %s", dsn)
	}
	connection.snapshot = snapshot

	return connection, nil
}

// loadSnapshot 元数据加载主流程。
// 缓存层的任何错误都按 miss 处理，缓存写失败只影响下次启动速度。
func (c *Connection) loadSnapshot(ctx context.Context) (*metadata.Snapshot, error) {
	fingerprint, err := metadata.Fingerprint(ctx, c.db, c.driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe schema fingerprint")
	}

	if c.cache != nil {
		snapshot, err := c.cache.Load(ctx, c.options.CacheName)
		if err == nil && snapshot != nil &&
			snapshot.Driver == c.driver.String() && snapshot.Fingerprint == fingerprint {
			return snapshot, nil
		}
	}

	snapshot, err := metadata.Reflect(ctx, c.db, c.driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reflect schema")
	}
	snapshot.Fingerprint = fingerprint

	if c.cache != nil {
		if err := c.cache.Save(ctx, c.options.CacheName, snapshot); err != nil {
			slog.Warn("failed to save metadata cache", "cache", c.options.CacheName, "error", err)
		}
	}

	return snapshot, nil
}

func (c *Connection) DB() *gorm.DB {
	return c.db
}

func (c *Connection) Driver() dbx.Driver {
	return c.driver
}

// Metadata 返回当前的元数据快照
func (c *Connection) Metadata() *metadata.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Session 返回绑定 ctx 的新会话
func (c *Connection) Session(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Session(&gorm.Session{NewDB: true})
}

// Transaction 在一个事务中执行 fn，fn 返回错误时回滚
func (c *Connection) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

// RefreshMetadata 丢弃缓存，强制重新反射并覆盖
func (c *Connection) RefreshMetadata(ctx context.Context) error {
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, c.options.CacheName); err != nil {
			slog.Warn("failed to invalidate metadata cache", "cache", c.options.CacheName, "error", err)
		}
	}

	snapshot, err := c.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	if c.options.StrictSchema && snapshot.Empty() {
		return errors.WithMessage(ErrEmptySchema, "refreshed schema is empty")
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()
	return nil
}

// RegisterModels 显式登记模型类，校验每个模型映射的表在快照中存在。
// 代替 import 副作用式的自动配置，失败时返回错误而不是静默跳过。
func (c *Connection) RegisterModels(models ...any) error {
	snapshot := c.Metadata()

	for _, model := range models {
		parsed, err := gormschema.Parse(model, &c.schemaCache, c.db.NamingStrategy)
		if err != nil {
			return errors.Wrapf(err, "failed to parse model %T", model)
		}
		if snapshot.Table(parsed.Table) == nil {
			return errors.Errorf("model %T maps to table %s which does not exist in schema", model, parsed.Table)
		}
	}

	c.mu.Lock()
	c.models = append(c.models, models...)
	c.mu.Unlock()
	return nil
}

// Models 返回已登记的模型
func (c *Connection) Models() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]any(nil), c.models...)
}

func (c *Connection) Close() error {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			slog.Warn("failed to close metadata cache", "error", err)
		}
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

// buildDSN 按数据库类型拼接 DSN，显式 DSN 优先
func buildDSN(driver dbx.Driver, options *ConnectionOptions) (string, error) {
	if options.DSN != "" {
		return options.DSN, nil
	}
	if options.Database == "" {
		return "", errors.New("database is required")
	}

	switch driver {
	case dbx.DriverMySQL:
		auth := options.Username
		if options.Password != "" {
			auth += ":" + options.Password
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			auth,
			defaultString(options.Host, "localhost"),
			defaultString(options.Port, "3306"),
			options.Database,
			defaultString(options.Charset, "utf8mb4")), nil
	case dbx.DriverPostgres:
		parts := []string{
			"host=" + defaultString(options.Host, "localhost"),
			"port=" + defaultString(options.Port, "5432"),
			"dbname=" + options.Database,
			"sslmode=" + defaultString(options.SSLMode, "disable"),
		}
		if options.Username != "" {
			parts = append(parts, "user="+options.Username)
		}
		if options.Password != "" {
			parts = append(parts, "password="+options.Password)
		}
		return strings.Join(parts, " "), nil
	case dbx.DriverSQLite:
		// SQLite 的 Database 就是文件路径（或 :memory:）
		return options.Database, nil
	}
	return "", errors.Errorf("unsupported driver: %s", driver)
}

func openDialector(driver dbx.Driver, dsn string, config *gorm.Config) (*gorm.DB, error) {
	switch driver {
	case dbx.DriverMySQL:
		return gorm.Open(mysql.Open(dsn), config)
	case dbx.DriverPostgres:
		return gorm.Open(postgres.Open(dsn), config)
	case dbx.DriverSQLite:
		return gorm.Open(sqlite.Open(dsn), config)
	}
	return nil, errors.Errorf("unsupported driver: %s", driver)
}

func defaultString(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func defaultInt(value int, def int) int {
	if value == 0 {
		return def
	}
	return value
}
