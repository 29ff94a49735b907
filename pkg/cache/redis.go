/*
Copyright 2025 Nuvix Contributors. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis-backed cache client.
type RedisOptions struct {
	addr     string
	username string
	password string
	db       int
	prefix   string
}

func DefaultRedisOptions() *RedisOptions {
	return &RedisOptions{
		addr:   "localhost:6379",
		prefix: "nuvix",
	}
}

func (opts *RedisOptions) WithAddr(addr string) *RedisOptions {
	opts.addr = addr
	return opts
}

func (opts *RedisOptions) WithUsername(username string) *RedisOptions {
	opts.username = username
	return opts
}

func (opts *RedisOptions) WithPassword(password string) *RedisOptions {
	opts.password = password
	return opts
}

func (opts *RedisOptions) WithDB(db int) *RedisOptions {
	opts.db = db
	return opts
}

// WithPrefix namespaces every key the cache touches.
func (opts *RedisOptions) WithPrefix(prefix string) *RedisOptions {
	opts.prefix = prefix
	return opts
}

// Redis purges cached projections from a shared redis instance.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Cache = (*Redis)(nil)

func NewRedis(ctx context.Context, opts *RedisOptions) (*Redis, error) {
	if opts == nil {
		opts = DefaultRedisOptions()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.addr,
		Username: opts.username,
		Password: opts.password,
		DB:       opts.db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
		prefix: opts.prefix,
	}, nil
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.prefix + ":" + key
	}

	return c.client.Del(ctx, prefixed...).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}
