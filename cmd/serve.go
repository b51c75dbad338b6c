package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for lead sync and matching",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initSync(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(env),
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

// newMux builds the API routes against an initialized sync environment.
func newMux(env *syncEnv) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /leads", func(w http.ResponseWriter, r *http.Request) {
		skip := queryInt(r, "skip", 0)
		limit := queryInt(r, "limit", 100)

		leads, err := env.Source.List(r.Context(), skip, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if leads == nil {
			leads = []model.Lead{}
		}
		writeJSON(w, http.StatusOK, leads)
	})

	mux.HandleFunc("POST /sync/lead", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LeadID     string `json:"lead_id"`
			MatchAgent *bool  `json:"match_agent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.LeadID == "" {
			http.Error(w, `{"error":"lead_id is required"}`, http.StatusBadRequest)
			return
		}

		matchAgent := req.MatchAgent == nil || *req.MatchAgent
		result, err := env.Orchestrator.SyncByLeadID(r.Context(), req.LeadID, matchAgent)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /sync/all", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Skip       int   `json:"skip"`
			Limit      int   `json:"limit"`
			MatchAgent *bool `json:"match_agent"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
		}

		matchAgent := req.MatchAgent == nil || *req.MatchAgent
		batch, err := env.Orchestrator.SyncAll(r.Context(), req.Skip, req.Limit, matchAgent)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, batch)
	})

	mux.HandleFunc("POST /match", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LeadID        string `json:"lead_id"`
			PromptVersion string `json:"prompt_version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.LeadID == "" {
			http.Error(w, `{"error":"lead_id is required"}`, http.StatusBadRequest)
			return
		}

		lead, err := env.Source.GetByLeadID(r.Context(), req.LeadID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if lead == nil {
			http.Error(w, `{"error":"lead not found"}`, http.StatusNotFound)
			return
		}

		match, err := env.Matcher.Match(r.Context(), *lead, req.PromptVersion)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
