package relay

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluxcd/stook/pkg/api"
)

// ListenAndServe serves the relay API, and /metrics, until stopCh is
// closed; then it shuts down gracefully. Errors from the listener are
// sent to errc.
func ListenAndServe(listenAddr string, apiServer api.Server, logger log.Logger, stopCh <-chan struct{}, errc chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", NewHandler(apiServer, NewRouter()))

	srv := &http.Server{
		Addr:        listenAddr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		// A webhook is answered only after its actions are done
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  15 * time.Second,
	}

	logger.Log("info", fmt.Sprintf("Starting HTTP server on %s", listenAddr))

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errc <- fmt.Errorf("HTTP server crashed: %v", err)
		}
	}()

	// wait for close signal and attempt graceful shutdown
	<-stopCh
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log("warn", fmt.Sprintf("HTTP server graceful shutdown failed %v", err))
	} else {
		logger.Log("info", "HTTP server stopped")
	}
}
