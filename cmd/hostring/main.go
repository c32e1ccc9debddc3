package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"github.com/gobwas/hostring"
	"github.com/gobwas/hostring/feed"
	"github.com/gobwas/hostring/internal/config"
	"github.com/gobwas/hostring/server"
)

const shutdownTimeout = 5 * time.Second

var configFile = flag.String("f", "etc/hostring.yaml", "the config file")

func main() {
	flag.Parse()

	c, err := config.Load(*configFile)
	logx.Must(err)
	logx.MustSetup(c.Log)
	defer logx.Close()

	rc, err := c.RingConfig()
	logx.Must(err)
	rc.Trace = hostring.RingTrace{
		OnCollision: func(pos uint64, prev, next string) {
			logx.Infof("ring: %s replaces %s at position %d", next, prev, pos)
		},
	}
	coord := hostring.NewCoordinator(hostring.NewRing(rc))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := newSource(ctx, c.Feed)
	logx.Must(err)
	defer closeSource()

	threading.GoSafe(func() {
		err := feed.Run(ctx, src, coord)
		if err != nil && !errors.Is(err, context.Canceled) {
			logx.Errorf("feed: stopped: %v", err)
		}
	})

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    c.ListenOn,
		Handler: server.New(coord),
	}
	threading.GoSafe(func() {
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logx.Errorf("http: shutdown: %v", err)
		}
	})

	logx.Infof("Starting server at %s (modulus %d, replicas %d, hash %s)...",
		c.ListenOn, c.Modulus, c.Replicas, c.Hash,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Errorf("http: %v", err)
	}
}

func newSource(ctx context.Context, c config.FeedConf) (feed.Source, func(), error) {
	switch c.Source {
	case config.SourceRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Pass,
		})
		src, err := feed.NewRedisSource(ctx, client, c.Redis.Channel)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		logx.Infof("feed: listening redis channel %q at %s", c.Redis.Channel, c.Redis.Addr)
		return src, func() {
			src.Close()
			client.Close()
		}, nil

	default:
		logx.Info("feed: reading standard input")
		return feed.NewLineSource(os.Stdin), func() {}, nil
	}
}
