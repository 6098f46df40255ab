// Command buddyd is the composition root for a buddy allocator device:
// it loads and validates configuration, builds the Device, and starts the
// HTTP carrier (always) and the NATS carrier and stats reporter (if
// configured), shutting all of them down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"

	"buddyd/internal/attach"
	"buddyd/internal/config"
	"buddyd/internal/devlog"
	"buddyd/internal/natssurface"
	"buddyd/internal/stats"

	"buddyd/internal/httpsurface"
	"buddyd/pkg/device"
)

func main() {
	var (
		flagConfigFile string
		flagListen     string
		flagDepth      int
		flagGops       bool
	)
	flag.StringVar(&flagConfigFile, "config", "", "Path to a JSON config file (overrides built-in defaults)")
	flag.StringVar(&flagListen, "listen", "", "Overwrite the HTTP carrier's listen address")
	flag.IntVar(&flagDepth, "depth", 0, "Overwrite the buddy tree depth (0 keeps the config file's value)")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		devlog.Warnf("buddyd: loading .env failed: %v", err)
	}

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			devlog.Errorf("buddyd: gops/agent.Listen failed: %v", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		devlog.Errorf("buddyd: loading config: %v", err)
		os.Exit(1)
	}
	if flagListen != "" {
		cfg.ListenAddr = flagListen
	}
	if flagDepth > 0 {
		cfg.Depth = flagDepth
	}

	if err := config.Validate(cfg); err != nil {
		devlog.Errorf("buddyd: invalid config:\n%v", err)
		os.Exit(1)
	}

	dev, err := device.New(cfg.Depth)
	if err != nil {
		devlog.Errorf("buddyd: initializing device: %v", err)
		os.Exit(1)
	}
	defer dev.Close()

	gate := attach.New()

	httpSrv := httpsurface.New(dev, gate, cfg.DeviceName)
	server := &http.Server{Addr: cfg.ListenAddr, Handler: httpSrv.Handler()}

	go func() {
		devlog.Infof("buddyd: HTTP carrier listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			devlog.Errorf("buddyd: HTTP carrier stopped: %v", err)
		}
	}()

	var natsListener *natssurface.Listener
	if cfg.NatsURL != "" {
		natsListener, err = natssurface.Listen(cfg.NatsURL, cfg.DeviceName, dev, gate)
		if err != nil {
			devlog.Errorf("buddyd: NATS carrier failed to start: %v", err)
		} else {
			devlog.Infof("buddyd: NATS carrier listening on %s", cfg.NatsURL)
		}
	}

	reporter, err := stats.Start(dev, cfg.StatsInterval)
	if err != nil {
		devlog.Warnf("buddyd: stats reporter failed to start: %v", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	devlog.Infof("buddyd: shutting down")
	_ = server.Shutdown(context.Background())
	if natsListener != nil {
		_ = natsListener.Close()
	}
	if reporter != nil {
		_ = reporter.Stop()
	}
}
