package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/card-extract/internal/card"
	"github.com/ironsheep/card-extract/internal/ner"
)

var testHTTPOptions = HTTPOptions{
	MaxBodyBytes:    1 << 16,
	ReadTimeout:     time.Second,
	WriteTimeout:    time.Second,
	ShutdownTimeout: time.Second,
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
}

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestHTTP_Extract(t *testing.T) {
	h := newTestServer().Handler(testHTTPOptions)

	body, _ := json.Marshal(map[string]string{"text": sampleCard})
	rec := doRequest(t, h, http.MethodPost, "/extract", string(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var fields map[string]string
	decodeBody(t, rec, &fields)

	if len(fields) != 9 {
		t.Errorf("field count: got %d, want 9 (%v)", len(fields), fields)
	}
	want := map[string]string{
		"Name":         "Jane Doe",
		"company_name": "Acme Ltd",
		"Designation":  "Manager",
		"Email":        "jane@acme.com",
		"Tel":          "042-1234567",
		"Fax":          card.Nil,
		"Website":      "www.acme.com",
		"Address":      card.Nil,
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("%s: got %q, want %q", k, fields[k], v)
		}
	}
}

func TestHTTP_ExtractMissingText(t *testing.T) {
	h := New(card.NewPipeline(fakeRecognizer{})).Handler(testHTTPOptions)

	rec := doRequest(t, h, http.MethodPost, "/extract", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var record card.Record
	decodeBody(t, rec, &record)
	if record != card.EmptyRecord() {
		t.Errorf("record: got %+v, want all nil", record)
	}
}

func TestHTTP_ExtractBadRequests(t *testing.T) {
	h := newTestServer().Handler(testHTTPOptions)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "text=hello"},
		{"array", `["jane@acme.com"]`},
		{"string", `"jane@acme.com"`},
		{"text not a string", `{"text": 42}`},
		{"text null", `{"text": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/extract", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			var e errorBody
			decodeBody(t, rec, &e)
			if e.Error == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestHTTP_ExtractBodyTooLarge(t *testing.T) {
	opts := testHTTPOptions
	opts.MaxBodyBytes = 32
	h := newTestServer().Handler(opts)

	body, _ := json.Marshal(map[string]string{"text": strings.Repeat("a", 100)})
	rec := doRequest(t, h, http.MethodPost, "/extract", string(body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rec.Code)
	}
}

func TestHTTP_ExtractRecognizerFault(t *testing.T) {
	fault := fmt.Errorf("%w: model not loaded", ner.ErrRecognize)
	h := New(card.NewPipeline(fakeRecognizer{err: fault})).Handler(testHTTPOptions)

	rec := doRequest(t, h, http.MethodPost, "/extract", `{"text":"Jane Doe"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestHTTP_Health(t *testing.T) {
	h := newTestServer(WithVersion("1.0.0")).Handler(testHTTPOptions)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"healthy"}` {
		t.Errorf("body: got %s", got)
	}
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	h := newTestServer().Handler(testHTTPOptions)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/extract"},
		{http.MethodPost, "/health"},
	}
	for _, tt := range tests {
		rec := doRequest(t, h, tt.method, tt.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: got %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func TestHTTP_RequestID(t *testing.T) {
	h := newTestServer().Handler(testHTTPOptions)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated request ID %q is not a UUID: %v", id, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "caller-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "caller-123" {
		t.Errorf("echoed request ID: got %q, want caller-123", got)
	}
}

func TestHTTP_RecoversPanic(t *testing.T) {
	h := New(panicExtractor{}).Handler(testHTTPOptions)

	rec := doRequest(t, h, http.MethodPost, "/extract", `{"text":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestHTTP_ExtractImage(t *testing.T) {
	engine := &fakeOCR{text: sampleCard}
	h := newTestServer(WithOCR(engine)).Handler(testHTTPOptions)

	body, _ := json.Marshal(map[string]string{"image_base64": pngBase64(t)})
	rec := doRequest(t, h, http.MethodPost, "/extract/image", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var result ImageExtraction
	decodeBody(t, rec, &result)
	if result.OCRText != sampleCard {
		t.Errorf("ocr_text: got %q", result.OCRText)
	}
	if result.Email != "jane@acme.com" {
		t.Errorf("Email: got %q", result.Email)
	}
	if engine.calls != 1 {
		t.Errorf("OCR calls: got %d, want 1", engine.calls)
	}
}

func TestHTTP_ExtractImageErrors(t *testing.T) {
	valid, _ := json.Marshal(map[string]string{"image_base64": pngBase64(t)})
	notImage, _ := json.Marshal(map[string]string{"image_base64": base64.StdEncoding.EncodeToString([]byte("Jane Doe"))})

	tests := []struct {
		name       string
		opts       []Option
		body       string
		wantStatus int
	}{
		{"ocr unavailable", nil, string(valid), http.StatusServiceUnavailable},
		{"missing field", []Option{WithOCR(&fakeOCR{})}, `{}`, http.StatusBadRequest},
		{"bad base64", []Option{WithOCR(&fakeOCR{})}, `{"image_base64":"%%%"}`, http.StatusBadRequest},
		{"not an image", []Option{WithOCR(&fakeOCR{})}, string(notImage), http.StatusBadRequest},
		{"ocr failure", []Option{WithOCR(&fakeOCR{err: errors.New("tesseract crashed")})}, string(valid), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(tt.opts...).Handler(testHTTPOptions)
			rec := doRequest(t, h, http.MethodPost, "/extract/image", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestServer().ListenAndServe(ctx, addr, testHTTPOptions)
	}()

	// Wait for the listener.
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status: got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
