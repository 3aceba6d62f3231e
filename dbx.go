// Package dbx 是基于 GORM 的数据库接入层：
// 封装连接构建、schema 元数据反射与落盘缓存、自定义列类型适配器。
// SQL 执行、关系解析、方言翻译等全部交给 GORM 和底层驱动。
package dbx

import (
	"strings"

	"github.com/pkg/errors"
)

// Driver 数据库类型，封闭枚举。
// 所有按数据库类型分支的逻辑都通过 Driver 显式分发，不在调用方散落字符串比较。
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// ParseDriver 解析数据库类型，兼容常见别名
func ParseDriver(driver string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql":
		return DriverMySQL, nil
	case "postgres", "postgresql", "pgsql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	}
	return "", errors.Errorf("unsupported driver: %s", driver)
}
