package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pixel-dither/internal/server"
	"pixel-dither/internal/source"
	"pixel-dither/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8443", "Listen address")
	serveCmd.Flags().Int("queue", 16, "Pending requests held by the worker")
	serveCmd.Flags().String("snapshot-url", "", "Page captured periodically and served as /snapshot.bmp")
	serveCmd.Flags().Duration("snapshot-every", 20*time.Second, "Snapshot refresh interval")
	serveCmd.Flags().String("snapshot-size", "800x480", "Snapshot viewport WxH")
	addParamFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	queue, _ := cmd.Flags().GetInt("queue")
	snapshotURL, _ := cmd.Flags().GetString("snapshot-url")
	snapshotEvery, _ := cmd.Flags().GetDuration("snapshot-every")
	snapshotSize, _ := cmd.Flags().GetString("snapshot-size")

	params, err := paramsFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(queue)
	w.Start(ctx)
	defer w.Stop()

	srv := server.New(w, params)

	if snapshotURL != "" {
		vw, vh, err := parseSize(snapshotSize)
		if err != nil {
			return err
		}
		capturer := source.NewCapturer(ctx, vw, vh)
		defer capturer.Close()
		srv.StartBackgroundRenderer(ctx, capturer, snapshotURL, snapshotEvery)
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Listening on %s ...", l.Addr())
	return serveUntilDone(ctx, &http.Server{Handler: srv.Handler()}, l, shutdownGrace)
}

const shutdownGrace = 5 * time.Second

// serveUntilDone serves on l until ctx is done, then shuts down, giving
// in-flight requests grace to finish. A failed shutdown is returned.
func serveUntilDone(ctx context.Context, httpSrv *http.Server, l net.Listener, grace time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdownErr <- httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	if err := <-shutdownErr; err != nil {
		log.Println("shutdown error:", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
