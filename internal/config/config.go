// Package config holds hostring service configuration.
package config

import (
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/gobwas/hostring"
)

const (
	SourceStdin = "stdin"
	SourceRedis = "redis"

	HashXXHash  = "xxhash"
	HashMurmur3 = "murmur3"
)

type (
	// Config is the service configuration. It is read once at start.
	Config struct {
		ListenOn string `json:",default=0.0.0.0:4000"`
		Modulus  uint64 `json:",default=1048576"`
		Replicas int    `json:",default=16"`
		Hash     string `json:",default=xxhash,options=xxhash|murmur3"`
		Feed     FeedConf
		Log      logx.LogConf
	}

	// FeedConf configures the membership feed.
	FeedConf struct {
		Source string `json:",default=stdin,options=stdin|redis"`
		Redis  RedisConf
	}

	// RedisConf configures the Redis pub/sub feed.
	RedisConf struct {
		Addr    string `json:",default=127.0.0.1:6379"`
		Pass    string `json:",optional"`
		Channel string `json:",default=hostring:membership"`
	}
)

// Load reads configuration from file and validates it.
func Load(file string) (Config, error) {
	var c Config
	if err := conf.Load(file, &c); err != nil {
		return c, fmt.Errorf("config: load %s: %w", file, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks ring parameters.
func (c Config) Validate() error {
	if c.Modulus == 0 {
		return fmt.Errorf("config: modulus must be greater than zero")
	}
	if c.Replicas <= 0 {
		return fmt.Errorf("config: replicas must be greater than zero; got %d", c.Replicas)
	}
	if _, err := hashFunc(c.Hash); err != nil {
		return err
	}
	return nil
}

// RingConfig returns parameters of the hash ring.
func (c Config) RingConfig() (hostring.Config, error) {
	fn, err := hashFunc(c.Hash)
	if err != nil {
		return hostring.Config{}, err
	}
	return hostring.Config{
		Modulus:  c.Modulus,
		Replicas: c.Replicas,
		Hash:     fn,
	}, nil
}

func hashFunc(name string) (func() hash.Hash64, error) {
	switch name {
	case "", HashXXHash:
		return func() hash.Hash64 {
			return xxhash.New()
		}, nil
	case HashMurmur3:
		return murmur3.New64, nil
	}
	return nil, fmt.Errorf("config: unknown hash function %q", name)
}
