package cache

import (
	"context"
	"time"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/metadata"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type BoltCacheOptions struct {
	// 数据库文件路径
	Path string `cfg:"path" validate:"required"`

	// 存放快照的桶名
	Bucket string `cfg:"bucket" def:"dbx_metadata"`

	// 获取文件锁的等待时间，零值无限期等待
	Timeout time.Duration `cfg:"timeout"`

	// 序列化格式：msgpack, json
	Serializer string `cfg:"serializer" def:"msgpack" validate:"omitempty,oneof=msgpack json"`
}

// BoltCache bbolt 文件缓存，多个缓存名共用一个数据库文件
type BoltCache struct {
	db         *bolt.DB
	bucket     []byte
	serializer Serializer[*metadata.Snapshot]
}

func NewBoltCacheWithOptions(options *BoltCacheOptions) (*BoltCache, error) {
	if options == nil {
		return nil, errors.New("bolt cache options is required")
	}
	if err := dbx.ValidateOptions(options); err != nil {
		return nil, errors.Wrap(err, "invalid bolt cache options")
	}

	bucket := options.Bucket
	if bucket == "" {
		bucket = "dbx_metadata"
	}

	serializer, err := newSerializer[*metadata.Snapshot](options.Serializer)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(options.Path, 0o600, &bolt.Options{Timeout: options.Timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt database %s", options.Path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to create bucket %s", bucket)
	}

	return &BoltCache{db: db, bucket: []byte(bucket), serializer: serializer}, nil
}

func (c *BoltCache) Load(ctx context.Context, name string) (*metadata.Snapshot, error) {
	var data []byte
	if err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		if value := bucket.Get([]byte(name)); value != nil {
			data = make([]byte, len(value))
			copy(data, value)
		}
		return nil
	}); err != nil {
		return nil, ErrCacheMiss
	}

	if data == nil {
		return nil, ErrCacheMiss
	}

	snapshot, err := c.serializer.Deserialize(data)
	if err != nil || snapshot == nil {
		return nil, ErrCacheMiss
	}
	return snapshot, nil
}

func (c *BoltCache) Save(ctx context.Context, name string, snapshot *metadata.Snapshot) error {
	data, err := c.serializer.Serialize(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	if err := c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(name), data)
	}); err != nil {
		return errors.Wrapf(err, "failed to save snapshot %s", name)
	}
	return nil
}

func (c *BoltCache) Invalidate(ctx context.Context, name string) error {
	if err := c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(name))
	}); err != nil {
		return errors.Wrapf(err, "failed to invalidate snapshot %s", name)
	}
	return nil
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
