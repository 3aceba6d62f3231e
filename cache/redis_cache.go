package cache

import (
	"context"
	"time"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/metadata"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisCacheOptions struct {
	// host:port 地址
	Endpoint string `cfg:"endpoint" def:"localhost:6379"`

	Username string `cfg:"username"`
	Password string `cfg:"password"`

	// 连接到服务器后选择的数据库
	DB int `cfg:"db" def:"0"`

	// 键前缀
	KeyPrefix string `cfg:"keyPrefix" def:"dbx:metadata:"`

	// 快照过期时间，零值不过期
	Expiration time.Duration `cfg:"expiration"`

	DialTimeout  time.Duration `cfg:"dialTimeout" def:"5s"`
	ReadTimeout  time.Duration `cfg:"readTimeout" def:"3s"`
	WriteTimeout time.Duration `cfg:"writeTimeout" def:"3s"`

	// 序列化格式：msgpack, json
	Serializer string `cfg:"serializer" def:"msgpack" validate:"omitempty,oneof=msgpack json"`
}

// RedisCache 共享的远端缓存，多个进程启动时可以复用同一份快照
type RedisCache struct {
	client     *redis.Client
	keyPrefix  string
	expiration time.Duration
	serializer Serializer[*metadata.Snapshot]
}

func NewRedisCacheWithOptions(options *RedisCacheOptions) (*RedisCache, error) {
	if options == nil {
		options = &RedisCacheOptions{}
	}
	if err := dbx.ValidateOptions(options); err != nil {
		return nil, errors.Wrap(err, "invalid redis cache options")
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = "localhost:6379"
	}
	keyPrefix := options.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "dbx:metadata:"
	}
	dialTimeout := options.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}
	readTimeout := options.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 3 * time.Second
	}
	writeTimeout := options.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 3 * time.Second
	}

	serializer, err := newSerializer[*metadata.Snapshot](options.Serializer)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         endpoint,
		Username:     options.Username,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to connect redis %s", endpoint)
	}

	return &RedisCache{
		client:     client,
		keyPrefix:  keyPrefix,
		expiration: options.Expiration,
		serializer: serializer,
	}, nil
}

func (c *RedisCache) key(name string) string {
	return c.keyPrefix + name
}

func (c *RedisCache) Load(ctx context.Context, name string) (*metadata.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key(name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, errors.Wrapf(err, "failed to load snapshot %s", name)
	}

	snapshot, err := c.serializer.Deserialize(data)
	if err != nil || snapshot == nil {
		return nil, ErrCacheMiss
	}
	return snapshot, nil
}

func (c *RedisCache) Save(ctx context.Context, name string, snapshot *metadata.Snapshot) error {
	data, err := c.serializer.Serialize(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	if err := c.client.Set(ctx, c.key(name), data, c.expiration).Err(); err != nil {
		return errors.Wrapf(err, "failed to save snapshot %s", name)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, c.key(name)).Err(); err != nil {
		return errors.Wrapf(err, "failed to invalidate snapshot %s", name)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
