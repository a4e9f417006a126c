package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/events"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/spectate"
)

//go:embed index.html
var htmlPage string

func main() {
	host := config.LoadHost()
	logger := host.Logger("web")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("bad game config", "err", err)
	}

	var sink game.Sink
	if host.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := events.Connect(ctx, host.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("event publishing disabled", "err", err)
		} else {
			defer rdb.Close()
			pub := events.NewPublisher(rdb, host.EventsChannel, logger.WithPrefix("events"))
			defer pub.Close()
			sink = pub
		}
	}

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", host.SSHDisplayHost)
	page = strings.ReplaceAll(page, "{{.SSHPort}}", host.SSHPort)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("/ws", spectate.NewHandler(cfg, sink, logger.WithPrefix("spectate")))

	addr := net.JoinHostPort(host.WebHost, host.WebPort)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
