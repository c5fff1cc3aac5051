// Command mockreceiver accepts walksim sessions and logs every position it receives.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:58502", "WebSocket listen address")
	path := flag.String("path", "/location", "WebSocket request path")
	tcpAddr := flag.String("tcp", "", "Optional TCP listen address for binary-framed sessions")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *path, *tcpAddr); err != nil {
		fmt.Fprintf(os.Stderr, "mockreceiver: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, path, tcpAddr string) error {
	rcv := newReceiver()

	mux := http.NewServeMux()
	mux.Handle(path, rcv)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("Mock receiver listening", "addr", addr, "path", path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			return fmt.Errorf("tcp listen: %w", err)
		}
		slog.Info("Mock receiver listening (tcp)", "addr", ln.Addr().String())
		go func() {
			if err := rcv.serveTCP(ctx, ln); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		slog.Info("Shutting down...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	received, clears := rcv.Stats()
	slog.Info("Mock receiver stopped", "positions", received, "clears", clears)
	return srv.Shutdown(shutdownCtx)
}
