package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	terrerrors "github.com/RCBiczok/terraces/pkg/errors"
	"github.com/RCBiczok/terraces/pkg/matrix"
	"github.com/RCBiczok/terraces/pkg/pipeline"
	"github.com/RCBiczok/terraces/pkg/session"
)

// newServeCmd creates the serve command.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the terrace analysis as an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			resultCache, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer resultCache.Close()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner := pipeline.NewRunner(resultCache, nil, store, logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           newAPIRouter(runner, store, cfg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()

			logger.Info("serving terrace analysis", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// analyzeRequest is the JSON body of POST /v1/analyze.
type analyzeRequest struct {
	Newick  string   `json:"newick"`
	Species []string `json:"species"`
	Matrix  [][]int  `json:"matrix"`
	Flags   int      `json:"flags"`
}

// analyzeResponse is the JSON answer of POST /v1/analyze.
type analyzeResponse struct {
	TerraceSize string   `json:"terrace_size"`
	OnTerrace   bool     `json:"on_terrace"`
	Constraints int      `json:"constraints"`
	Trees       []string `json:"trees,omitempty"`
}

// errorResponse is the JSON error shape.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAPIRouter builds the chi router of the HTTP API.
func newAPIRouter(runner *pipeline.Runner, store session.Store, cfg *Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/v1/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body analyzeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		m, err := matrixFromRequest(&body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}

		var out bytes.Buffer
		result, err := runner.Execute(req.Context(), m, body.Newick, body.Flags, &out, pipeline.Options{
			CompressThreshold: cfg.CompressThreshold,
		})
		if err != nil {
			code := string(terrerrors.GetCode(err))
			if code == "" {
				code = string(terrerrors.ErrCodeInternal)
			}
			writeError(w, http.StatusUnprocessableEntity, code, terrerrors.UserMessage(err))
			return
		}

		resp := analyzeResponse{
			TerraceSize: result.TerraceSize.String(),
			OnTerrace:   result.OnTerrace,
			Constraints: result.Constraints,
		}
		if out.Len() > 0 {
			resp.Trees = strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/v1/runs", func(w http.ResponseWriter, req *http.Request) {
		if store == nil {
			writeJSON(w, http.StatusOK, []*session.Run{})
			return
		}
		runs, err := store.List(req.Context(), 100)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

// matrixFromRequest validates the request shape and builds the matrix.
func matrixFromRequest(body *analyzeRequest) (*matrix.Matrix, error) {
	if len(body.Species) == 0 || len(body.Matrix) != len(body.Species) {
		return nil, fmt.Errorf("matrix must have one row per species")
	}
	partitions := len(body.Matrix[0])
	m := matrix.New(body.Species, partitions)
	for i, row := range body.Matrix {
		if len(row) != partitions {
			return nil, fmt.Errorf("matrix row %d has %d entries, want %d", i, len(row), partitions)
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				// Preserved as a non-binary entry so validation reports it.
				m.Set(i, j, 2)
				continue
			}
			m.Set(i, j, uint8(v))
		}
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
