package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/disclosurelab/esgscore/internal/extract"
	"github.com/disclosurelab/esgscore/internal/panel"
)

var servePort int

const maxUploadBytes = 64 << 20 // 64 MiB, enough for any disclosure PDF

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP endpoint that scores uploaded reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		analyzer, err := newAnalyzer()
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/score", func(w http.ResponseWriter, req *http.Request) {
			handleScore(w, req, analyzer)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// handleScore accepts a multipart upload (field "report", filename carries the
// panel naming convention) and returns the score mapping.
func handleScore(w http.ResponseWriter, req *http.Request, analyzer *panel.Analyzer) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)

	file, header, err := req.FormFile("report")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'report' is required"})
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if extract.DetectFormat(filename) == extract.FormatUnknown {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "only .pdf and .txt reports are supported"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "esgscore-*")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "temp storage unavailable"})
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filename)
	dst, err := os.Create(tmpPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "temp storage unavailable"})
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload read failed"})
		return
	}
	dst.Close()

	result, err := analyzer.AnalyzeFile(req.Context(), tmpPath)
	if err != nil {
		zap.L().Warn("score request failed",
			zap.String("file", filename),
			zap.Error(err),
		)
		status := http.StatusUnprocessableEntity
		if extract.IsUnsupportedFormat(err) {
			status = http.StatusUnsupportedMediaType
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	zap.L().Info("report scored via http",
		zap.String("file", filename),
		zap.Float64("total", result.Total),
	)
	writeJSON(w, http.StatusOK, result.Map())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
