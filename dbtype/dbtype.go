// Package dbtype 提供数据库原生列类型的适配器。
// 每个适配器是一对纯函数式的编解码（写入时编码、读取时解码），
// 超出定义域的输入返回类型错误，不做静默截断。
package dbtype

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/hatlonely/dbx"
	"github.com/pkg/errors"
)

// key: driver + ":" + 小写的数据库类型名
var adapterRegistry sync.Map

// Register 将数据库原生类型名与适配器类型显式关联，反射时据此标注列。
// 重复注册：相同类型幂等成功，不同类型返回错误。
func Register(driver dbx.Driver, typeName string, adapter any) error {
	if typeName == "" {
		return errors.New("type name is required")
	}

	adapterType := reflect.TypeOf(adapter)
	if adapterType == nil {
		return errors.New("adapter is required")
	}
	for adapterType.Kind() == reflect.Ptr {
		adapterType = adapterType.Elem()
	}

	key := registryKey(driver, typeName)
	if existing, ok := adapterRegistry.Load(key); ok {
		if existing.(reflect.Type) == adapterType {
			return nil
		}
		return errors.Errorf("adapter for %s already registered with type %s", key, existing.(reflect.Type))
	}

	adapterRegistry.Store(key, adapterType)
	return nil
}

// Lookup 查询数据库类型名对应的适配器名
func Lookup(driver dbx.Driver, typeName string) (string, bool) {
	value, ok := adapterRegistry.Load(registryKey(driver, typeName))
	if !ok {
		return "", false
	}
	return value.(reflect.Type).String(), true
}

// RegisterDefaults 注册全部内置适配器。
// 显式调用代替 init 副作用，注册冲突时返回错误。
func RegisterDefaults() error {
	entries := []struct {
		driver   dbx.Driver
		typeName string
		adapter  any
	}{
		{dbx.DriverPostgres, "point", Point{}},
		{dbx.DriverPostgres, "polygon", Polygon{}},
		{dbx.DriverPostgres, "circle", Circle{}},
		{dbx.DriverPostgres, "citext", CIText("")},
		{dbx.DriverPostgres, "xml", XML("")},
	}

	for _, entry := range entries {
		if err := Register(entry.driver, entry.typeName, entry.adapter); err != nil {
			return err
		}
	}
	return nil
}

func registryKey(driver dbx.Driver, typeName string) string {
	return driver.String() + ":" + strings.ToLower(typeName)
}

// scanText 提取 Scan 输入中的文本，适配器只接受文本形态的数据库值
func scanText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", errors.Errorf("cannot scan %T into text", value)
}

// checkFinite NaN 和 Inf 视为超出定义域
func checkFinite(values ...float64) error {
	for _, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.Errorf("non-finite coordinate: %v", value)
		}
	}
	return nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
