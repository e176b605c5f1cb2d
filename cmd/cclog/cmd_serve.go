package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/cclog/internal/server"
)

var serveFlags struct {
	host     string
	port     int
	dir      string
	useHTTP  bool
	certFile string
	keyFile  string
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.host, "host", "", "listen address (default from config)")
	f.IntVar(&serveFlags.port, "port", 0, "listen port (default from config)")
	f.StringVar(&serveFlags.dir, "dir", "", "log directory (default from config)")
	f.BoolVar(&serveFlags.useHTTP, "http", false, "use plain HTTP instead of HTTPS")
	f.StringVar(&serveFlags.certFile, "cert", "", "path to TLS certificate file")
	f.StringVar(&serveFlags.keyFile, "key", "", "path to TLS private key file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve session logs over HTTPS",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	host := cfg.Server.Host
	if serveFlags.host != "" {
		host = serveFlags.host
	}
	port := cfg.Server.Port
	if serveFlags.port != 0 {
		port = serveFlags.port
	}
	logDir := cfg.LogDir
	if serveFlags.dir != "" {
		logDir = serveFlags.dir
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    server.ListenAddr(host, port),
		Handler: server.New(logDir),
	}

	scheme := "http"
	certFile, keyFile := serveFlags.certFile, serveFlags.keyFile
	if !serveFlags.useHTTP {
		scheme = "https"
		if certFile == "" || keyFile == "" {
			if certFile = cfg.Server.CertFile; certFile == "" {
				var err error
				certFile, keyFile, err = server.EnsureCert(filepath.Join(".claude", "certs"))
				if err != nil {
					return err
				}
			} else {
				keyFile = cfg.Server.KeyFile
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("serving session logs",
		"url", scheme+"://"+httpServer.Addr,
		"log_dir", logDir,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if scheme == "https" {
			err = httpServer.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
