package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/EcstasyEngineer/mantrad/internal/catalog"
	"github.com/EcstasyEngineer/mantrad/internal/config"
	"github.com/EcstasyEngineer/mantrad/internal/engine"
	"github.com/EcstasyEngineer/mantrad/internal/notify"
	"github.com/EcstasyEngineer/mantrad/internal/server"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the delivery daemon and HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Delivery.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Delivery.WebhookURL)
	}

	eng := engine.New(db, cat, notifier, nil)
	eng.Start(time.Duration(cfg.Delivery.TickSeconds) * time.Second)
	defer eng.Stop()

	srv := server.New(db, eng, cat, VersionString())
	addr := cfg.Addr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "mantrad serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  themes: %d\n", cat.Len())
		fmt.Fprintf(os.Stderr, "  tick: %ds\n", cfg.Delivery.TickSeconds)
		if cfg.Delivery.WebhookURL != "" {
			fmt.Fprintf(os.Stderr, "  webhook: %s\n", cfg.Delivery.WebhookURL)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
