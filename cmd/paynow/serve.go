package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/metrics"
	"github.com/Sternrassler/paynow-client/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the composed payment listing as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.HTTPAddr
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      NewRouter(a.client, a.redis),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: a.cfg.Timeout + 15*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("api_url", a.cfg.APIURL).Msg("Starting listing server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down listing server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (env PAYNOW_HTTP_ADDR)")
	return cmd
}

// NewRouter wires the listing endpoints. rdb may be nil when caching is off.
func NewRouter(source pagination.PageFetcher, rdb *redis.Client) chi.Router {
	router := chi.NewRouter()

	router.Get("/health", healthHandler)
	router.Get("/ready", readyHandler(rdb))
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/view", func(r chi.Router) {
		r.Get("/payments", viewPaymentsHandler(source))
	})

	return router
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				http.Error(w, "Redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Ready")
	}
}

// viewPaymentsHandler answers GET /view/payments?page=&size=&search=&status=&sort=
// with the composed view. A failed load still returns the view, with 502.
func viewPaymentsHandler(source pagination.PageFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseListingQuery(r)
		if err == nil {
			err = q.validate()
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		status := http.StatusOK
		v, err := loadListing(r.Context(), source, q)
		if err != nil {
			log.Warn().Err(err).Int("page", q.Page).Int("size", q.Size).Msg("Listing load failed")
			status = http.StatusBadGateway
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("Failed to write view")
		}
	}
}

func parseListingQuery(r *http.Request) (listingQuery, error) {
	values := r.URL.Query()
	q := listingQuery{
		Page:   1,
		Size:   pagination.DefaultItemsPerPage,
		Search: values.Get("search"),
		Status: values.Get("status"),
		Sort:   values.Get("sort"),
	}

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", v)
		}
		q.Page = n
	}
	if v := values.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid size %q", v)
		}
		q.Size = n
	}
	return q, nil
}
