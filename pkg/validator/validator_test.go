package validator_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgvalidator "github.com/ghuser/invoiceledger/pkg/validator"
)

type customerReq struct {
	CustomerName string `json:"customerName" validate:"notblank,max=10"`
}

type lineReq struct {
	Name     string  `json:"name"     validate:"required,max=100"`
	Price    float64 `json:"price"    validate:"gt=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		field string
		want  string
	}{
		{"required", &lineReq{Price: 1}, "name", "This field is required"},
		{"gt", &lineReq{Name: "x"}, "price", "Must be greater than 0"},
		{"gte", &lineReq{Name: "x", Price: 1, Quantity: -1}, "quantity", "Must be greater than or equal to 0"},
		{"notblank", &customerReq{CustomerName: "   "}, "customerName", "Must not be blank"},
		{"max counts runes", &customerReq{CustomerName: "ééééééééééé"}, "customerName", "Maximum length is 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(tt.in))
			if m[tt.field] != tt.want {
				t.Errorf("%s = %q, want %q (all: %v)", tt.field, m[tt.field], tt.want, m)
			}
		})
	}
}

func TestValidate_AcceptsValid(t *testing.T) {
	for _, v := range []any{
		&customerReq{CustomerName: "Jane Doe"},
		&customerReq{CustomerName: "éééééééééé"},
		&lineReq{Name: "Widget", Price: 19.99, Quantity: 2},
	} {
		if err := pkgvalidator.Validate(v); err != nil {
			t.Errorf("Validate(%+v) = %v", v, err)
		}
	}
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	if m := pkgvalidator.FormatValidationErrors(errors.New("boom")); len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantError  string
		wantField  string
	}{
		{"valid", `{"name":"widget","price":19.99,"quantity":2}`, true, 0, "", ""},
		{"malformed json", `{bad json`, false, http.StatusBadRequest, "Invalid JSON", ""},
		{"empty body", ``, false, http.StatusBadRequest, "Request body is required", ""},
		{"missing name", `{"price":1}`, false, http.StatusUnprocessableEntity, "Validation failed", "name"},
		{"zero price", `{"name":"widget","price":0}`, false, http.StatusUnprocessableEntity, "Validation failed", "price"},
		{"over the cap", `{"name":"` + strings.Repeat("w", 64) + `"}`, false, http.StatusRequestEntityTooLarge, "Request body too large", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.Body = http.MaxBytesReader(w, r.Body, 48)

			req, ok := pkgvalidator.ValidateRequest[lineReq](w, r)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (body %s)", ok, tt.wantOK, w.Body.String())
			}
			if ok {
				if req.Name != "widget" || req.Quantity != 2 {
					t.Errorf("decoded %+v", req)
				}
				return
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body pkgvalidator.ErrorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if tt.wantField != "" {
				if _, found := body.Fields[tt.wantField]; !found {
					t.Errorf("fields %v missing %q", body.Fields, tt.wantField)
				}
			}
		})
	}
}
