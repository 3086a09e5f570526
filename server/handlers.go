package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/sr"
)

// DiagnosticsHeader carries the number of warnings raised while reading.
const DiagnosticsHeader = "X-DSR-Warnings"

type diagnosticJSON struct {
	Severity string `json:"severity"`
	Position string `json:"position,omitempty"`
	Message  string `json:"message"`
}

type errorJSON struct {
	Error       string           `json:"error"`
	Diagnostics []diagnosticJSON `json:"diagnostics,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	render, contentType, ok := s.renderer(format, r)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown format %q", format), http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "object too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		jsonError(w, "empty body", http.StatusBadRequest)
		return
	}

	ds, _, err := s.Codec.Decode(data)
	if err != nil {
		jsonError(w, "failed to decode object: "+err.Error(), http.StatusBadRequest)
		return
	}
	doc, diags, err := sr.ReadDocument(ds, s.ReadFlags, sr.WithLogger(s.logger()), sr.WithRegistry(s.Registry))
	if errors.Is(err, srerrors.ErrUnknownDocumentType) {
		jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorJSON{Error: err.Error(), Diagnostics: toJSON(diags)})
		return
	}

	var buf bytes.Buffer
	if err := render(doc, &buf); err != nil {
		s.logger().Error("render failed", "format", format, "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(DiagnosticsHeader, strconv.Itoa(diags.Count(sr.SeverityWarning)))
	w.Write(buf.Bytes())
}

type renderFunc func(doc *sr.DocumentTree, w io.Writer) error

// renderer picks the output for format. Query parameters switch on
// optional parts of the output.
func (s *Server) renderer(format string, r *http.Request) (renderFunc, string, bool) {
	switch format {
	case "text":
		flags := sr.PrintItemPosition
		if queryBool(r, "codes") {
			flags |= sr.PrintConceptNameCodes
		}
		if queryBool(r, "templates") {
			flags |= sr.PrintTemplateIdentification
		}
		if queryBool(r, "expand") {
			flags |= sr.PrintExpandIncludedTemplates
		}
		if queryBool(r, "short") {
			flags |= sr.PrintShortenLongItemValues
		}
		return func(doc *sr.DocumentTree, w io.Writer) error {
			return doc.Print(w, flags)
		}, "text/plain; charset=utf-8", true
	case "xml":
		var flags sr.XMLFlags
		if queryBool(r, "namespace") {
			flags |= sr.XMLUseNamespace
		}
		if queryBool(r, "templates") {
			flags |= sr.XMLWriteTemplateIdentification
		}
		if queryBool(r, "attributes") {
			flags |= sr.XMLCodeComponentsAsAttribute | sr.XMLRelationshipTypeAsAttribute | sr.XMLValueTypeAsAttribute
		}
		return func(doc *sr.DocumentTree, w io.Writer) error {
			return doc.WriteXML(w, flags)
		}, "application/xml; charset=utf-8", true
	case "html":
		var flags sr.HTMLFlags
		if queryBool(r, "codes") {
			flags |= sr.HTMLRenderConceptNameCodes
		}
		if queryBool(r, "annex") {
			flags |= sr.HTMLNeverExpandChildrenInline
		}
		return func(doc *sr.DocumentTree, w io.Writer) error {
			return doc.RenderHTML(w, flags)
		}, "text/html; charset=utf-8", true
	}
	return nil, "", false
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func toJSON(diags sr.Diagnostics) []diagnosticJSON {
	out := make([]diagnosticJSON, 0, len(diags))
	for _, d := range diags {
		if d.Severity < sr.SeverityWarning {
			continue
		}
		out = append(out, diagnosticJSON{Severity: d.Severity.String(), Position: d.Position, Message: d.Message})
	}
	return out
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
