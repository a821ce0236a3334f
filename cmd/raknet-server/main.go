// Command raknet-server runs the dispatcher standalone: it parses flags,
// wires logging/metrics, starts the server.Server, and waits for a shutdown
// signal. Grounded on the teacher's core/main.go banner/signal/errChan
// shape, generalized from SA-MP's hardcoded Config struct to flag-driven
// connection.Config and server.Config values.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"raknet-server-go/pkg/logger"
	"raknet-server-go/pkg/metrics"
	"raknet-server-go/source/server"
)

const version = "1.0.0"

func main() {
	var (
		bindAddr      = flag.String("addr", "0.0.0.0:19132", "UDP address to listen on")
		metricsAddr   = flag.String("metrics-addr", "127.0.0.1:9132", "address to serve /metrics on")
		mtuCap        = flag.Uint("mtu-cap", 1492, "largest MTU the server will agree to")
		retransmit    = flag.Duration("retransmit-timeout", 5*time.Second, "age before an unacked frame is resent")
		maxRetries    = flag.Int("max-retries", 5, "retransmit attempts before a connection is dropped")
		inactivity    = flag.Duration("inactivity-timeout", 15*time.Second, "silence before a connection is dropped")
		tickPeriod    = flag.Duration("tick-period", 50*time.Millisecond, "dispatcher tick cadence")
		motd          = flag.String("motd", "A RakNet Server", "message returned by Unconnected Ping")
		jsonLogs      = flag.Bool("json-logs", false, "emit structured JSON logs instead of text")
		logLevel      = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger.Banner("RakNet Server", version)
	logger.SetJSON(*jsonLogs)
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	guidBytes := xid.New().Bytes()
	serverGUID := binary.BigEndian.Uint64(guidBytes[:8])
	cfg := server.DefaultConfig(*bindAddr, serverGUID)
	cfg.MTUCap = uint16(*mtuCap)
	cfg.RetransmitTimeout = *retransmit
	cfg.MaxRetries = *maxRetries
	cfg.InactivityTimeout = *inactivity
	cfg.TickPeriod = *tickPeriod
	cfg.Motd = func() string { return *motd }

	logger.Info("bind=%s mtu_cap=%d retransmit_timeout=%s max_retries=%d inactivity_timeout=%s",
		*bindAddr, cfg.MTUCap, cfg.RetransmitTimeout, cfg.MaxRetries, cfg.InactivityTimeout)

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	log := logrus.NewEntry(logger.Std())
	srv := server.New(cfg, log, met)
	srv.Events().On(server.EventConnected, func(ev server.Event) {
		logger.Info("connected: %s", ev.Addr)
	})
	srv.Events().On(server.EventDisconnected, func(ev server.Event) {
		logger.Warn("disconnected: %s (%s)", ev.Addr, ev.Reason)
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		logger.Info("metrics listening on %s", *metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			logger.Fatal("server error: %v", err)
		}
	case sig := <-sigChan:
		logger.Warn("received signal: %v", sig)
		logger.Info("shutting down gracefully...")
		cancel()
		<-errChan
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	logger.Success("server stopped")
}
