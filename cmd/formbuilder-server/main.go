package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/httpapi"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	storagePath := flag.String("storage", "", "storage location: a directory, a .db file for sqlite, or empty for in-memory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	backend, cleanup, err := openBackend(*storagePath)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	documents := store.New(ctx,
		store.WithStorage(backend),
		store.WithPersistFailureHandler(func(err error) {
			logger.Error("persist", "error", err)
		}),
	)

	api := httpapi.New(documents, backend, httpapi.WithLogger(logger))

	server := &http.Server{
		Addr:              *addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func openBackend(path string) (storage.Storage, func(), error) {
	noop := func() {}
	switch {
	case path == "":
		return storage.NewMemory(), noop, nil
	case filepath.Ext(path) == ".db" || filepath.Ext(path) == ".sqlite":
		backend, err := storage.NewSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return backend, func() { backend.Close() }, nil
	default:
		backend, err := storage.NewFile(path)
		if err != nil {
			return nil, noop, err
		}
		return backend, noop, nil
	}
}
