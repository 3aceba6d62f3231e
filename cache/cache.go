// Package cache 提供 schema 元数据快照的持久化缓存。
// 缓存只是启动加速的优化层，不是数据来源：损坏、丢失、指纹不匹配都按 miss 处理，
// 回退到完整反射，绝不返回过期快照当作正确数据。
package cache

import (
	"context"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/metadata"
	"github.com/pkg/errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache 快照缓存接口。
// 同名并发写入不做协调，最后写入者生效。
type Cache interface {
	// Load 加载快照，不存在或无法解析时返回 ErrCacheMiss。
	// 调用方应把任何错误都当作 miss 处理。
	Load(ctx context.Context, name string) (*metadata.Snapshot, error)

	// Save 保存快照，同名覆盖
	Save(ctx context.Context, name string, snapshot *metadata.Snapshot) error

	// Invalidate 删除快照，不存在时也返回成功
	Invalidate(ctx context.Context, name string) error

	Close() error
}

// CacheOptions 缓存后端配置，按 Type 分发
type CacheOptions struct {
	// 后端类型：file, bolt, redis
	Type string `cfg:"type" def:"file" validate:"omitempty,oneof=file bolt redis"`

	File  *FileCacheOptions  `cfg:"file"`
	Bolt  *BoltCacheOptions  `cfg:"bolt"`
	Redis *RedisCacheOptions `cfg:"redis"`
}

// NewCacheWithOptions 按类型创建缓存后端，nil 等价于默认的文件缓存
func NewCacheWithOptions(options *CacheOptions) (Cache, error) {
	if options == nil {
		options = &CacheOptions{}
	}
	if err := dbx.ValidateOptions(options); err != nil {
		return nil, errors.Wrap(err, "invalid cache options")
	}

	switch options.Type {
	case "", "file":
		return NewFileCacheWithOptions(options.File)
	case "bolt":
		return NewBoltCacheWithOptions(options.Bolt)
	case "redis":
		return NewRedisCacheWithOptions(options.Redis)
	}
	return nil, errors.Errorf("unsupported cache type: %s", options.Type)
}
