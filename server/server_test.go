package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caio-sobreiro/dicomsr/dicom"
	"github.com/caio-sobreiro/dicomsr/sr"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// reportDataset returns a Comprehensive SR dataset: a titled root
// container holding one text finding.
func reportDataset(t *testing.T) *dicom.Dataset {
	t.Helper()
	doc := sr.NewDocumentTree(types.DocumentTypeComprehensive, sr.WithLogger(discardLogger()))
	if _, err := doc.AddContentItem(types.RelationshipIsRoot, types.ValueTypeContainer, tree.AddBelowCurrent); err != nil {
		t.Fatal(err)
	}
	if err := doc.CurrentContentItem().SetConceptName(sr.NewCodedEntry("126000", "DCM", "Imaging Measurement Report"), true); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.AddContentItem(types.RelationshipContains, types.ValueTypeText, tree.AddBelowCurrent); err != nil {
		t.Fatal(err)
	}
	node := doc.CurrentContentItem()
	if err := node.SetConceptName(sr.NewCodedEntry("121071", "DCM", "Finding"), true); err != nil {
		t.Fatal(err)
	}
	if err := node.SetContent(&sr.TextContent{Value: "mass in left lobe"}); err != nil {
		t.Fatal(err)
	}

	ds := dicom.NewDataset()
	if _, err := doc.Write(ds); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	ds.PutString(dicom.SOPClassUID, types.ComprehensiveSRStorage)
	ds.PutString(dicom.SOPInstanceUID, dicom.NewUID())
	return ds
}

func part10(t *testing.T, ds *dicom.Dataset) []byte {
	t.Helper()
	data, err := dicom.EncodePart10(ds, nil)
	if err != nil {
		t.Fatalf("EncodePart10() error = %v", err)
	}
	return data
}

func post(srv http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(WithLogger(discardLogger()))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRender(t *testing.T) {
	ds := reportDataset(t)
	srv := New(WithLogger(discardLogger()))

	tests := []struct {
		name        string
		path        string
		body        []byte
		contentType string
		want        []string
	}{
		{
			name:        "text from part 10",
			path:        "/v1/render/text",
			body:        part10(t, ds),
			contentType: "text/plain",
			want:        []string{"mass in left lobe", "1.1"},
		},
		{
			name:        "text from bare dataset",
			path:        "/v1/render/text?codes=true",
			body:        ds.EncodeDataset(),
			contentType: "text/plain",
			want:        []string{"mass in left lobe", "121071"},
		},
		{
			name:        "xml",
			path:        "/v1/render/xml?namespace=1",
			body:        part10(t, ds),
			contentType: "application/xml",
			want:        []string{"<content", sr.Namespace, "mass in left lobe"},
		},
		{
			name:        "html",
			path:        "/v1/render/html",
			body:        part10(t, ds),
			contentType: "text/html",
			want:        []string{"<!DOCTYPE html>", "Comprehensive SR", "mass in left lobe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(srv, tt.path, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", got, tt.contentType)
			}
			if got := rec.Header().Get(DiagnosticsHeader); got != "0" {
				t.Errorf("%s = %q, want 0", DiagnosticsHeader, got)
			}
			for _, want := range tt.want {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("body does not contain %q:\n%s", want, rec.Body.String())
				}
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	notSR := reportDataset(t)
	notSR.PutString(dicom.SOPClassUID, "1.2.840.10008.5.1.4.1.1.2")

	textRoot := reportDataset(t)
	textRoot.PutString(dicom.ValueType, "TEXT")

	tests := []struct {
		name   string
		opts   []Option
		path   string
		body   []byte
		status int
	}{
		{"unknown format", nil, "/v1/render/pdf", part10(t, reportDataset(t)), http.StatusNotFound},
		{"empty body", nil, "/v1/render/text", nil, http.StatusBadRequest},
		{"too large", []Option{WithMaxUploadBytes(16)}, "/v1/render/text", part10(t, reportDataset(t)), http.StatusRequestEntityTooLarge},
		{"not an SR object", nil, "/v1/render/text", part10(t, notSR), http.StatusUnsupportedMediaType},
		{"invalid tree", nil, "/v1/render/text", part10(t, textRoot), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(append([]Option{WithLogger(discardLogger())}, tt.opts...)...)
			rec := post(srv, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.status, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body["error"] == "" || body["error"] == nil {
				t.Errorf("error body = %v, want an error message", body)
			}
		})
	}
}

func TestServe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(WithLogger(discardLogger()), WithReadTimeout(5*time.Second))
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServeRequiresListener(t *testing.T) {
	if err := New().Serve(context.Background(), nil); err == nil {
		t.Error("Serve(nil) error = nil, want error")
	}
}
