package server

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/detag/internal/history"
	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/internal/version"
	"github.com/jmylchreest/detag/pkg/convert"
	"github.com/jmylchreest/detag/pkg/detag"
	"github.com/jmylchreest/detag/pkg/table"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

func (s *Server) routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.Handle("GET /app/", http.StripPrefix("/app/", http.FileServerFS(static)))
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /process-csv", s.handleProcess)

	return withCORS(s.cfg.AllowedOrigins, withLogging(withRecovery(mux)))
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, healthResponse{Status: "ok", Message: "Server is running"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, version.Get())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, badRequest("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, entries)
}

// handleConvert converts the HTML column of a single upload.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := history.Entry{Time: start, Route: r.URL.Path}

	out, err := s.convert(w, r, &entry)
	s.finish(w, r, &entry, out, err, start)
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, entry *history.Entry) (*detag.Output, error) {
	d, err := s.requestDetag(r)
	if err != nil {
		return nil, err
	}
	if err := s.parseForm(w, r); err != nil {
		return nil, err
	}
	up, ok, err := formFile(r, "file", "file1")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, badRequest("file is required")
	}
	entry.Files = []string{up.Name}
	return d.Convert(r.Context(), up)
}

// handleProcess converts file1, or compares it against file2 when present.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := history.Entry{Time: start, Route: r.URL.Path}

	out, err := s.process(w, r, &entry)
	s.finish(w, r, &entry, out, err, start)
}

func (s *Server) process(w http.ResponseWriter, r *http.Request, entry *history.Entry) (*detag.Output, error) {
	d, err := s.requestDetag(r)
	if err != nil {
		return nil, err
	}
	if err := s.parseForm(w, r); err != nil {
		return nil, err
	}
	first, hasFirst, err := formFile(r, "file1")
	if err != nil {
		return nil, err
	}
	second, hasSecond, err := formFile(r, "file2")
	if err != nil {
		return nil, err
	}

	switch {
	case !hasFirst && hasSecond:
		entry.Files = []string{second.Name}
		return nil, badRequest("Both files are required")
	case !hasFirst:
		return nil, badRequest("file is required")
	case hasSecond:
		entry.Files = []string{first.Name, second.Name}
		logger.InfoContext(r.Context(), "comparing files", "file1", first.Name, "file2", second.Name)
		return d.Compare(r.Context(), first, second)
	default:
		entry.Files = []string{first.Name}
		return d.Convert(r.Context(), first)
	}
}

// finish writes the output or the error and records the job.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, entry *history.Entry, out *detag.Output, err error, start time.Time) {
	if err != nil {
		entry.Status = writeError(w, r, err)
		entry.Error = err.Error()
	} else {
		writeOutput(w, out)
		entry.Status = http.StatusOK
		entry.Output = out.Filename
		entry.Format = string(out.Format)
		entry.Rows = out.Rows
		entry.Unmatched = out.Unmatched
	}
	entry.Duration = time.Since(start)

	if err := s.history.Record(r.Context(), *entry); err != nil {
		logger.WarnContext(r.Context(), "history record failed", "error", err)
	}
}

// requestDetag applies the per-request query overrides.
func (s *Server) requestDetag(r *http.Request) (*detag.Detag, error) {
	q := r.URL.Query()
	var opts []detag.Option

	if v := q.Get("format"); v != "" {
		f, err := output.ParseFormat(v)
		if err != nil {
			return nil, badRequest(err.Error())
		}
		opts = append(opts, detag.WithFormat(f))
	}
	if v := q.Get("column"); v != "" {
		opts = append(opts, detag.WithColumn(convert.ParseColumnRef(v)))
	}
	if v := q.Get("sheet"); v != "" {
		opts = append(opts, detag.WithSheet(v))
	}
	if v := q.Get("cleaner"); v != "" {
		opts = append(opts, detag.WithCleaner(v))
	}
	if v := q.Get("delimiter"); v != "" {
		comma, err := table.ParseDelimiter(v)
		if err != nil {
			return nil, badRequest(err.Error())
		}
		opts = append(opts, detag.WithDelimiter(comma))
	}

	d, err := s.detag.With(opts...)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	return d, nil
}

// parseForm bounds the body and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	limit := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return err
		case strings.Contains(err.Error(), "request body too large"):
			return &http.MaxBytesError{Limit: limit}
		default:
			return badRequest("invalid upload: " + err.Error())
		}
	}
	return nil
}

// formFile returns the first present file among the given form fields.
func formFile(r *http.Request, fields ...string) (detag.Upload, bool, error) {
	for _, field := range fields {
		f, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return detag.Upload{}, false, badRequest("invalid upload " + field + ": " + err.Error())
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return detag.Upload{}, false, err
		}
		return detag.Upload{Name: hdr.Filename, Data: data}, true, nil
	}
	return detag.Upload{}, false, nil
}

func writeOutput(w http.ResponseWriter, out *detag.Output) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WarnContext(r.Context(), "encode response", "error", err)
	}
}
