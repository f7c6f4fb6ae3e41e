package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/invoiceledger/pkg/httpx"
)

func TestJSON_HeadersAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": 42})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", xct)
	}
	var body map[string]int64
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != 42 {
		t.Errorf("body = %v", body)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusNotFound, "invoice not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body httpx.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invoice not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New("pq: connection refused")
	tests := []struct {
		name   string
		status int
		prod   bool
		want   string
	}{
		{"client error in production", http.StatusNotFound, true, err.Error()},
		{"server error in production", http.StatusInternalServerError, true, "Internal Server Error"},
		{"server error in development", http.StatusInternalServerError, false, err.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := httpx.SafeError(err, tt.status, tt.prod); got != tt.want {
				t.Errorf("SafeError = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPositiveIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"9223372036854775808", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var (
				got int64
				err error
			)
			r := chi.NewRouter()
			r.Get("/invoice/{id}", func(_ http.ResponseWriter, req *http.Request) {
				got, err = httpx.PositiveIDParam(req, "id")
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoice/"+tt.raw, nil))

			if tt.wantErr {
				if !errors.Is(err, httpx.ErrInvalidID) {
					t.Fatalf("err = %v, want ErrInvalidID", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("PositiveIDParam = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.Attachment(w, "application/pdf", "invoice-7.pdf", []byte("%PDF-1.3"))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `inline; filename="invoice-7.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if cl := w.Header().Get("Content-Length"); cl != "8" {
		t.Errorf("Content-Length = %q", cl)
	}
	if w.Body.String() != "%PDF-1.3" {
		t.Errorf("body = %q", w.Body.String())
	}
}
