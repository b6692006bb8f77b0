package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleSearch_FiltersAndLimits(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search/?q=paix&limit=5", nil)
	rec := httptest.NewRecorder()
	handleSearch(rec, req)

	var body struct {
		Features []struct {
			Properties struct {
				Label string `json:"label"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Features) != 2 {
		t.Fatalf("len(features) = %d, want 2", len(body.Features))
	}
	for _, f := range body.Features {
		if !strings.Contains(strings.ToLower(f.Properties.Label), "paix") {
			t.Fatalf("unexpected candidate %q", f.Properties.Label)
		}
	}
}

func TestHandleZoneCheck(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		covered bool
	}{
		{"paris covered", `{"latitude":48.869,"longitude":2.331}`, true},
		{"lyon not covered", `{"latitude":45.764,"longitude":4.835}`, false},
		{"middle of nowhere", `{"latitude":0,"longitude":0}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/zones/check", strings.NewReader(tt.payload))
			rec := httptest.NewRecorder()
			handleZoneCheck(rec, req)

			var result struct {
				Covered      bool `json:"covered"`
				TechnicienID int  `json:"technicien_id"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.Covered != tt.covered {
				t.Fatalf("covered = %v, want %v", result.Covered, tt.covered)
			}
			if tt.covered && result.TechnicienID == 0 {
				t.Fatal("covered answer must include technicien_id")
			}
		})
	}
}

func bookRequest(t *testing.T, slotID string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/interventions/"+slotID+"/book", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleBook_TakenSlot(t *testing.T) {
	r := newRouter()
	req := bookRequest(t, "13", map[string]string{
		"clientId": "12", "adresse": "10 Rue de la Paix 75002 Paris", "electrique": "0",
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "slot taken") {
		t.Fatalf("body = %q, want 'slot taken'", rec.Body.String())
	}
}

func TestHandleBook_Success(t *testing.T) {
	r := newRouter()
	req := bookRequest(t, "10", map[string]string{
		"clientId": "12", "adresse": "10 Rue de la Paix 75002 Paris", "electrique": "1",
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleBook_MissingFields(t *testing.T) {
	r := newRouter()
	req := bookRequest(t, "10", map[string]string{"electrique": "0"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
