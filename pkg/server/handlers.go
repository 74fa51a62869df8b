package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/citytour/pkg/buildinfo"
	"github.com/matzehuels/citytour/pkg/core/tour"
	"github.com/matzehuels/citytour/pkg/errors"
	"github.com/matzehuels/citytour/pkg/pipeline"
)

const (
	mimeJSON = "application/json"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var artifactTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// SolveRequest is the JSON body of /v1/solve and /v1/render.
type SolveRequest struct {
	// Matrix is either a string holding a delimited matrix (or a JSON edge
	// list when Format is "json"), or a JSON edge list object.
	Matrix    json.RawMessage `json:"matrix"`
	Format    string          `json:"format,omitempty"`
	Delimiter string          `json:"delimiter,omitempty"`
	Start     string          `json:"start,omitempty"`
	Mode      string          `json:"mode,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"`
	Formats   []string        `json:"formats,omitempty"`
	HideCosts bool            `json:"hide_costs,omitempty"`
}

// SolveResponse is the body of a successful /v1/solve.
type SolveResponse struct {
	RunID string `json:"run_id"`
	// Route lists city names in visiting order, back to the start for a
	// closed tour.
	Route     []string          `json:"route"`
	Tour      *tour.Result      `json:"tour"`
	Cached    bool              `json:"cached"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	opts, err := s.readOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SolveResponse{
		RunID:     res.RunID,
		Route:     RouteNames(res.Tour),
		Tour:      res.Tour,
		Cached:    res.CacheInfo.TourHit,
		Artifacts: res.Artifacts,
	})
}

// handleRender responds with a single diagram. The format comes from the
// "format" query parameter, then the first entry of formats, then svg.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.readOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if isJSON(r) {
		// for JSON bodies "format" names the matrix format
		format = ""
	}
	if format == "" && len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifactTypes[format])
	w.Header().Set("X-Run-ID", res.RunID)
	w.Header().Set("X-Tour-Cost", strconv.FormatInt(res.Tour.TotalCost, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readOptions builds pipeline options from either a JSON body or a raw
// matrix body with query parameters.
func (s *Server) readOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return pipeline.Options{}, errors.New(errors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}

	if isJSON(r) {
		return jsonOptions(body)
	}
	return queryOptions(r, body)
}

func jsonOptions(body []byte) (pipeline.Options, error) {
	var req SolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	raw := bytes.TrimSpace(req.Matrix)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "matrix is required")
	}

	opts := pipeline.Options{
		Format:    req.Format,
		Delimiter: req.Delimiter,
		Start:     req.Start,
		Mode:      req.Mode,
		Refresh:   req.Refresh,
		Formats:   req.Formats,
		HideCosts: req.HideCosts,
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode matrix")
		}
		opts.Data = []byte(text)
	} else {
		opts.Data = raw
		if opts.Format == "" {
			opts.Format = "json"
		}
	}
	return opts, nil
}

func queryOptions(r *http.Request, body []byte) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Data:      body,
		Format:    q.Get("matrix_format"),
		Delimiter: q.Get("delimiter"),
		Sheet:     q.Get("sheet"),
		Start:     q.Get("start"),
		Mode:      q.Get("mode"),
		HideCosts: q.Has("hide_costs"),
	}
	if opts.Format == "" {
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mt == mimeXLSX {
			opts.Format = "xlsx"
		}
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	if v := q.Get("formats"); v != "" {
		opts.Formats = strings.Split(v, ",")
	}
	return opts, nil
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == mimeJSON
}

// RouteNames returns the city names of res in visiting order, followed by
// the start city again when the tour is closed.
func RouteNames(res *tour.Result) []string {
	names := make([]string, 0, len(res.Cities)+1)
	for _, c := range res.Cities {
		names = append(names, c.String())
	}
	if res.IsClosed() {
		names = append(names, res.Start.String())
	}
	return names
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	msg := errors.UserMessage(err)

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		code, msg = errors.ErrCodeTimeout, "request timed out"
		status = errors.HTTPStatus(code)
	case stderrors.Is(err, context.Canceled):
		code, msg = errors.ErrCodeCanceled, "request canceled"
		status = errors.HTTPStatus(code)
	case code == "" || code == errors.ErrCodeInternal:
		code, msg = errors.ErrCodeInternal, "internal error"
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	default:
		var e *errors.Error
		if stderrors.As(err, &e) && e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	}

	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", mimeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
