// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bingohall/server/internal/cache"
	"github.com/bingohall/server/internal/config"
	"github.com/bingohall/server/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(cfg.RedisAddr); err != nil {
			logrus.WithError(err).Warn("redis unavailable, action history disabled")
		} else {
			defer cache.Close()
			logrus.WithField("addr", cfg.RedisAddr).Info("action history enabled")
		}
	}

	srv := server.New(cfg.WinWindow)

	logrus.WithFields(logrus.Fields{
		"addr":      cfg.BindAddr,
		"winWindow": cfg.WinWindow,
	}).Info("room coordinator listening")

	if err := http.ListenAndServe(cfg.BindAddr, srv.Routes()); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
