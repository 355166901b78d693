package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/powercalc/powercalc/api"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string // Listen address; overrides server.addr

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			logrus.Fatalf("Failed to listen on %s: %v", addr, err)
		}
		if err := runServe(ctx, appConfig, ln); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

// runServe serves the API on ln until ctx is cancelled, then drains
// in-flight requests.
func runServe(ctx context.Context, cfg *AppConfig, ln net.Listener) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	svc, err := newService(cfg, st)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := &http.Server{
		Handler: api.NewRouter(api.Config{
			Service:     svc,
			History:     st,
			Registry:    reg,
			Log:         logrus.StandardLogger(),
			AssessRate:  cfg.Server.RateLimit,
			AssessBurst: cfg.Server.Burst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", ln.Addr().String()).Info("serving")
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logrus.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}
