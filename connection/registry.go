package connection

import (
	"sync"

	"github.com/hatlonely/dbx"
	"github.com/pkg/errors"
)

// Registry 按配置复用连接句柄。
// 相同配置的重复 GetOrOpen 返回同一个 *Connection，不重复建立连接。
// 句柄归注册表所有，统一通过 Remove 或 CloseAll 释放。
type Registry struct {
	mu          sync.Mutex
	connections map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{connections: map[string]*Connection{}}
}

// optionsKey 连接配置的标识：数据库类型 + DSN + 缓存名
func optionsKey(options *ConnectionOptions) (string, error) {
	driver, err := dbx.ParseDriver(defaultString(options.Driver, "mysql"))
	if err != nil {
		return "", err
	}
	dsn, err := buildDSN(driver, options)
	if err != nil {
		return "", err
	}
	return driver.String() + "|" + dsn + "|" + options.CacheName, nil
}

// GetOrOpen 返回已有句柄，没有则新建并登记
func (r *Registry) GetOrOpen(options *ConnectionOptions) (*Connection, error) {
	if options == nil {
		return nil, errors.New("connection options is required")
	}
	key, err := optionsKey(options)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if connection, ok := r.connections[key]; ok {
		return connection, nil
	}

	connection, err := NewConnectionWithOptions(options)
	if err != nil {
		return nil, err
	}
	r.connections[key] = connection
	return connection, nil
}

// Get 只查不建
func (r *Registry) Get(options *ConnectionOptions) (*Connection, bool) {
	key, err := optionsKey(options)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	connection, ok := r.connections[key]
	return connection, ok
}

// Remove 关闭并移除一个句柄，不存在时返回成功
func (r *Registry) Remove(options *ConnectionOptions) error {
	key, err := optionsKey(options)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	connection, ok := r.connections[key]
	if !ok {
		return nil
	}
	delete(r.connections, key)
	return connection.Close()
}

// CloseAll 关闭所有句柄，返回第一个错误
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for key, connection := range r.connections {
		if err := connection.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.connections, key)
	}
	return firstErr
}

// DefaultRegistry 进程级默认注册表，对应最常见的单例用法
var DefaultRegistry = NewRegistry()

// GetOrOpen 使用默认注册表
func GetOrOpen(options *ConnectionOptions) (*Connection, error) {
	return DefaultRegistry.GetOrOpen(options)
}
