// Package httpapi serves the upload-and-extract workflow over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/export"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pipeline"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/session"
)

const (
	// DownloadName is the file name offered by GET /download
	DownloadName = "extracted_data.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	uploadField     = "files"
	multipartMemory = 8 << 20
)

// Processor runs extraction over a session directory
type Processor interface {
	ProcessDirectory(ctx context.Context, dir string) (*pipeline.Result, error)
}

// WorkbookWriter saves records as a spreadsheet
type WorkbookWriter interface {
	WriteFile(path string, records []fields.Record) (*export.Summary, error)
}

// Options tune the upload surface
type Options struct {
	MaxUpload    int64
	KeepSessions int
	Logger       *slog.Logger
}

// Server wires the HTTP routes to the pipeline, exporter and session store
type Server struct {
	pipeline  Processor
	exporter  WorkbookWriter
	store     *session.Store
	maxUpload int64
	keep      int
	logger    *slog.Logger
	router    chi.Router
}

// New creates the server and its routes
func New(p Processor, w WorkbookWriter, store *session.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline:  p,
		exporter:  w,
		store:     store,
		maxUpload: opts.MaxUpload,
		keep:      opts.KeepSessions,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/process", s.handleProcess)
	r.Get("/download", s.handleDownload)
	r.Post("/cleanup", s.handleCleanup)

	s.router = r
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// processResponse is the body of a successful POST /process
type processResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Session  string               `json:"session"`
	Files    []string             `json:"files"`
	Records  []fields.Record      `json:"records"`
	Stats    pipeline.Stats       `json:"stats"`
	Failures []pipeline.FileError `json:"failures,omitempty"`
	Download bool                 `json:"download_available"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	// parts sent without a file name land in Value: the field was
	// submitted but nothing was chosen
	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		msg := "No files provided"
		if len(r.MultipartForm.Value[uploadField]) > 0 {
			msg = "No files selected"
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sess, err := s.store.Create()
	if err != nil {
		s.logger.Error("http.session_failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	saved := s.saveUploads(sess, headers)
	if len(saved) == 0 {
		_ = os.RemoveAll(sess.Dir)
		writeError(w, http.StatusBadRequest, "No valid PDF files uploaded")
		return
	}

	result, err := s.pipeline.ProcessDirectory(r.Context(), sess.Dir)
	if err != nil {
		s.logger.Error("http.process_failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary, err := s.exporter.WriteFile(sess.Output, result.Records)
	if err != nil {
		s.logger.Error("http.export_failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary.Written {
		s.store.SetLatest(sess.Output)
	}

	s.logger.Info("http.processed", "session", sess.ID, "files", len(saved), "records", len(result.Records))
	writeJSON(w, http.StatusOK, processResponse{
		Success:  true,
		Message:  result.Summary(),
		Session:  sess.ID,
		Files:    saved,
		Records:  result.Records,
		Stats:    result.Stats,
		Failures: result.Failures,
		Download: summary.Written,
	})
}

// saveUploads stores every acceptable part and returns the stored base names
func (s *Server) saveUploads(sess *session.Session, headers []*multipart.FileHeader) []string {
	var saved []string
	for _, fh := range headers {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			s.logger.Warn("http.upload_skipped", "name", fh.Filename)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			s.logger.Warn("http.upload_unreadable", "name", fh.Filename, "err", err)
			continue
		}
		path, err := s.store.SaveUpload(sess, fh.Filename, f)
		_ = f.Close()
		if err != nil {
			s.logger.Warn("http.upload_rejected", "name", fh.Filename, "err", err)
			continue
		}
		saved = append(saved, filepath.Base(path))
	}
	return saved
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, err := s.store.Latest()
	if err != nil {
		writeError(w, http.StatusNotFound, "No processed data available")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "No processed data available")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadName+`"`)
	http.ServeContent(w, r, DownloadName, info.ModTime(), f)
}

func (s *Server) handleCleanup(w http.ResponseWriter, _ *http.Request) {
	report, err := s.store.Cleanup(s.keep)
	if err != nil {
		s.logger.Error("http.cleanup_failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Cleanup completed",
		"removed": report,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// logRequests logs one line per request through slog
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
