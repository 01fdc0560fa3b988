package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/sticky"
	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/pkg/adapters/file"
	stickyhttp "github.com/aretw0/sticky/pkg/adapters/http"
	"github.com/aretw0/sticky/pkg/adapters/memory"
	"github.com/aretw0/sticky/pkg/adapters/redis"
	"github.com/aretw0/sticky/pkg/observability"
	"github.com/aretw0/sticky/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the engine in server mode, exposing transitions, the inactive registry
and a snapshot stream over HTTP. Snapshots are persisted to Redis (--redis),
a directory (--snapshot-dir) or kept in memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		key, _ := cmd.Flags().GetString("key")

		opts := optionsFrom(cmd)
		logger := cli.CreateLogger(opts)

		store, err := storeFrom(cmd)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics := observability.NewMetrics(reg)

		session, err := cli.NewSession(opts,
			sticky.WithObserver(metrics.Hooks()),
			sticky.WithSnapshotStore(store, key),
		)
		if err != nil {
			return err
		}

		if snap, err := session.Engine.LoadSnapshot(cmd.Context()); err == nil && snap != nil {
			logger.Info("previous snapshot found", "key", key, "current", snap.Current, "inactive", len(snap.Inactive))
		}

		handler := stickyhttp.NewHandler(session.Engine,
			stickyhttp.WithLogger(logger),
			stickyhttp.WithMetrics(reg),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting sticky server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving tree: %s\n", opts.TreeFile)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Fprintf(cmd.OutOrStdout(), "\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sticky server stopped gracefully")
			return nil
		}
	},
}

func storeFrom(cmd *cobra.Command) (ports.SnapshotStore, error) {
	addr, _ := cmd.Flags().GetString("redis")
	dir, _ := cmd.Flags().GetString("snapshot-dir")

	switch {
	case addr != "" && dir != "":
		return nil, fmt.Errorf("--redis and --snapshot-dir are mutually exclusive")
	case addr != "":
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		opts := []redis.Option{redis.WithLocking(5 * time.Second)}
		if ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		return redis.New(addr, password, db, opts...), nil
	case dir != "":
		return file.New(dir), nil
	default:
		return memory.NewStore(), nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("key", "", "Snapshot key (defaults to the tree file name)")
	serveCmd.Flags().String("redis", "", "Redis address for snapshot persistence")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database")
	serveCmd.Flags().Duration("ttl", 0, "Expiration of persisted snapshots (Redis only)")
	serveCmd.Flags().String("snapshot-dir", "", "Directory for snapshot persistence")
}
