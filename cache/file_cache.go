package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/metadata"
	"github.com/pkg/errors"
)

type FileCacheOptions struct {
	// 缓存目录，默认 ~/.cache/dbx
	Dir string `cfg:"dir"`

	// 序列化格式：msgpack, json
	Serializer string `cfg:"serializer" def:"msgpack" validate:"omitempty,oneof=msgpack json"`
}

// FileCache 每个缓存名对应缓存目录下的一个文件。
// 写入走临时文件加改名，避免读到写了一半的内容。
type FileCache struct {
	dir        string
	serializer Serializer[*metadata.Snapshot]
}

func NewFileCacheWithOptions(options *FileCacheOptions) (*FileCache, error) {
	if options == nil {
		options = &FileCacheOptions{}
	}
	if err := dbx.ValidateOptions(options); err != nil {
		return nil, errors.Wrap(err, "invalid file cache options")
	}

	dir := options.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home dir")
		}
		dir = filepath.Join(home, ".cache", "dbx")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache dir %s", dir)
	}

	serializer, err := newSerializer[*metadata.Snapshot](options.Serializer)
	if err != nil {
		return nil, err
	}

	return &FileCache{dir: dir, serializer: serializer}, nil
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")

// path 缓存名里的路径分隔符统一替换，避免逃出缓存目录
func (c *FileCache) path(name string) string {
	return filepath.Join(c.dir, fileNameReplacer.Replace(name))
}

func (c *FileCache) Load(ctx context.Context, name string) (*metadata.Snapshot, error) {
	data, err := os.ReadFile(c.path(name))
	if err != nil {
		return nil, ErrCacheMiss
	}

	snapshot, err := c.serializer.Deserialize(data)
	if err != nil || snapshot == nil {
		// 损坏的缓存文件按 miss 处理，调用方会重新反射并覆盖
		return nil, ErrCacheMiss
	}
	return snapshot, nil
}

func (c *FileCache) Save(ctx context.Context, name string, snapshot *metadata.Snapshot) error {
	data, err := c.serializer.Serialize(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	tmp, err := os.CreateTemp(c.dir, ".dbx-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp cache file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write cache file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close cache file")
	}

	if err := os.Rename(tmp.Name(), c.path(name)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace cache file %s", c.path(name))
	}
	return nil
}

func (c *FileCache) Invalidate(ctx context.Context, name string) error {
	if err := os.Remove(c.path(name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove cache file %s", c.path(name))
	}
	return nil
}

func (c *FileCache) Close() error {
	return nil
}
