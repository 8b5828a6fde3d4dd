package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/aggregate"
	"github.com/sells-group/fuelwatch-cli/internal/model"
	"github.com/sells-group/fuelwatch-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored price data over a read-only HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/clubs", func(w http.ResponseWriter, req *http.Request) {
			profiles, err := st.ListProfiles(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, profiles)
		})

		r.Get("/api/latest/{club}", func(w http.ResponseWriter, req *http.Request) {
			club := chi.URLParam(req, "club")
			prices, err := st.LatestPrices(req.Context(), club)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, prices)
		})

		r.Get("/api/history", func(w http.ResponseWriter, req *http.Request) {
			days := queryInt(req, "days", 30)
			records, err := st.PriceHistory(req.Context(), req.URL.Query().Get("club"), days)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, records)
		})

		r.Get("/api/trends", func(w http.ResponseWriter, req *http.Request) {
			days := queryInt(req, "days", 7)
			records, err := st.PriceHistory(req.Context(), req.URL.Query().Get("club"), days)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, aggregate.TrendStats(records))
		})

		r.Get("/api/lowest", func(w http.ResponseWriter, req *http.Request) {
			lowest, err := lowestFromStore(req.Context(), st)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, lowest)
		})

		r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
			date := req.URL.Query().Get("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			stats, err := st.DailyStats(req.Context(), date)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, stats)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// lowestFromStore computes the lowest price per fuel type from each known
// club's latest stored prices.
func lowestFromStore(ctx context.Context, st store.Store) (map[string]aggregate.Lowest, error) {
	profiles, err := st.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var results []model.ClubResult
	for _, p := range profiles {
		prices, err := st.LatestPrices(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		results = append(results, model.ClubResult{
			Club:    model.Club{Name: p.Name, URL: p.ClubURL},
			Address: p.Address,
			Prices:  prices,
		})
	}
	return aggregate.LowestByFuelType(results), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	zap.L().Error("api request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func queryInt(req *http.Request, key string, def int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
