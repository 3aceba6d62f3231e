package metadata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hatlonely/dbx"
	"github.com/pkg/errors"
	"github.com/segmentio/fasthash/fnv1a"
	"gorm.io/gorm"
)

// Fingerprint 对当前 schema 做一次廉价探测，生成可比较的指纹。
// 只读系统目录，不走完整反射；指纹相同即认为 schema 未变化，缓存的快照可复用。
func Fingerprint(ctx context.Context, db *gorm.DB, driver dbx.Driver) (string, error) {
	switch driver {
	case dbx.DriverSQLite:
		return sqliteFingerprint(ctx, db)
	case dbx.DriverMySQL:
		return mysqlFingerprint(ctx, db)
	case dbx.DriverPostgres:
		return postgresFingerprint(ctx, db)
	}
	return "", errors.Errorf("unsupported driver: %s", driver)
}

// sqliteFingerprint 读取 PRAGMA schema_version，任何 DDL 都会使其自增
func sqliteFingerprint(ctx context.Context, db *gorm.DB) (string, error) {
	var version int64
	if err := db.WithContext(ctx).Raw("PRAGMA schema_version").Scan(&version).Error; err != nil {
		return "", errors.Wrap(err, "failed to probe sqlite schema version")
	}

	hash := fnv1a.Init64
	hash = fnv1a.AddString64(hash, "sqlite:"+strconv.FormatInt(version, 10))
	return formatHash(hash), nil
}

// mysqlFingerprint 对 information_schema 中当前库的列清单求哈希
func mysqlFingerprint(ctx context.Context, db *gorm.DB) (string, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT TABLE_NAME, COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME, ORDINAL_POSITION`).Rows()
	if err != nil {
		return "", errors.Wrap(err, "failed to probe mysql schema")
	}
	defer rows.Close()

	hash := fnv1a.Init64
	hash = fnv1a.AddString64(hash, "mysql")
	for rows.Next() {
		var tableName, columnName, columnType, isNullable, columnKey string
		if err := rows.Scan(&tableName, &columnName, &columnType, &isNullable, &columnKey); err != nil {
			return "", errors.Wrap(err, "failed to scan mysql schema probe")
		}
		hash = fnv1a.AddString64(hash, tableName+"."+columnName+":"+columnType+":"+isNullable+":"+columnKey)
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, "failed to probe mysql schema")
	}

	return formatHash(hash), nil
}

// postgresFingerprint 对用户命名空间下的 pg_catalog 列清单求哈希
func postgresFingerprint(ctx context.Context, db *gorm.DB) (string, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT n.nspname, c.relname, a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull
		FROM pg_attribute a
		JOIN pg_class c ON a.attrelid = c.oid
		JOIN pg_namespace n ON c.relnamespace = n.oid
		WHERE c.relkind = 'r'
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY n.nspname, c.relname, a.attnum`).Rows()
	if err != nil {
		return "", errors.Wrap(err, "failed to probe postgres schema")
	}
	defer rows.Close()

	hash := fnv1a.Init64
	hash = fnv1a.AddString64(hash, "postgres")
	for rows.Next() {
		var namespace, tableName, columnName, columnType string
		var notNull bool
		if err := rows.Scan(&namespace, &tableName, &columnName, &columnType, &notNull); err != nil {
			return "", errors.Wrap(err, "failed to scan postgres schema probe")
		}
		hash = fnv1a.AddString64(hash, namespace+"."+tableName+"."+columnName+":"+columnType+":"+strconv.FormatBool(notNull))
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, "failed to probe postgres schema")
	}

	return formatHash(hash), nil
}

func formatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
