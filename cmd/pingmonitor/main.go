package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/amartya2002/pingmonitor/internal/httpapi"
	"github.com/amartya2002/pingmonitor/internal/metrics"
	"github.com/amartya2002/pingmonitor/uptime"
)

const shutdownTimeout = 5 * time.Second

var errUsage = errors.New("usage")

type options struct {
	address      string
	interval     time.Duration
	timeout      time.Duration
	samples      int
	prober       string
	privileged   bool
	httpAddr     string
	logFile      string
	logLevel     string
	internalLogs bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pingmonitor: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pingmonitor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.DurationVar(&o.interval, "interval", uptime.DefaultInterval, "Delay between probes")
	fs.DurationVar(&o.timeout, "timeout", uptime.DefaultTimeout, "Per-probe timeout")
	fs.IntVar(&o.samples, "samples", 24, "Number of recent probes in the success-rate window")
	fs.StringVar(&o.prober, "prober", "ping", "Probe implementation: ping or icmp")
	fs.BoolVar(&o.privileged, "privileged", false, "Use raw ICMP sockets (requires root or CAP_NET_RAW)")
	fs.StringVar(&o.httpAddr, "http", "", "Status server listen address, e.g. :8080 (disabled when empty)")
	fs.StringVar(&o.logFile, "log-file", "", "Also write logs to this file")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: none, error, info or debug")
	fs.BoolVar(&o.internalLogs, "internal-logs", false, "Log monitor lifecycle details")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pingmonitor n.n.n.n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	o.address = strings.TrimSpace(fs.Arg(0))
	if o.address == "" {
		fmt.Fprintln(stderr, "Usage: pingmonitor n.n.n.n")
		return nil, errUsage
	}
	return o, nil
}

func run(ctx context.Context, o *options) error {
	level, err := uptime.ParseLogLevel(o.logLevel)
	if err != nil {
		return err
	}
	prober, err := uptime.NewProber(o.prober, o.privileged)
	if err != nil {
		return err
	}

	monitorOpts := []uptime.Option{
		uptime.WithInterval(o.interval),
		uptime.WithTimeout(o.timeout),
		uptime.WithSamples(o.samples),
		uptime.WithProber(prober),
		uptime.WithLogLevel(level),
		uptime.WithInternalLogs(o.internalLogs),
	}
	if o.logFile != "" {
		monitorOpts = append(monitorOpts, uptime.LogFile(o.logFile))
	}

	monitor, err := uptime.New(o.address, monitorOpts...)
	if err != nil {
		return err
	}
	logger := monitor.Logger()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("Failed to register metrics", zap.Error(err))
	}

	var server *httpapi.Server
	if o.httpAddr != "" {
		server = httpapi.NewServer(o.httpAddr, monitor, prometheus.DefaultGatherer, logger)
		go func() {
			if err := server.ListenAndServe(); err != nil {
				logger.Error("Status server exited", zap.Error(err))
			}
		}()
	}

	monitor.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Status server shutdown", zap.Error(err))
		}
	}
	logger.Info("pingmonitor stopped")
	return nil
}
