package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

func TestClassify_Success(t *testing.T) {
	var gotBody classifyRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"classifications": [
				{"section_id": "chunk_2", "practice": "data_selling", "status": "ALLOWS", "evidence": "we may sell your data"},
				{"section_id": "", "practice": "advertising", "status": "UNCLEAR", "evidence": "no practices detected"}
			]
		}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	classifications, err := client.Classify(context.Background(), "we may sell your data to partners", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody.SectionID != "chunk_2" {
		t.Errorf("expected request section_id chunk_2, got %q", gotBody.SectionID)
	}

	if gotBody.Text != "we may sell your data to partners" {
		t.Errorf("unexpected request text %q", gotBody.Text)
	}

	if len(classifications) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(classifications))
	}

	if classifications[0].Practice != types.PracticeDataSelling || classifications[0].Status != types.StatusAllows {
		t.Errorf("unexpected first classification: %+v", classifications[0])
	}

	// Empty section_id on the wire falls back to the chunk identifier
	if classifications[1].SectionID != "chunk_2" {
		t.Errorf("expected fallback section id chunk_2, got %q", classifications[1].SectionID)
	}
}

func TestClassify_UpstreamErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "model unavailable"}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	_, err := client.Classify(context.Background(), "text", 0)
	if !errors.Is(err, ErrClassificationService) {
		t.Fatalf("expected ErrClassificationService, got %v", err)
	}

	if !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("expected upstream detail in error, got %q", err.Error())
	}
}

func TestClassify_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"section_id": "chunk_0"}`},
		{"null field", `{"classifications": null}`},
		{"not a list", `{"classifications": {"practice": "advertising"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := New(WithBaseURL(server.URL))

			_, err := client.Classify(context.Background(), "text", 0)
			if !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestClassify_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := New(WithBaseURL(server.URL))

	_, err := client.Classify(context.Background(), "text", 0)
	if !errors.Is(err, ErrClassificationService) {
		t.Errorf("expected ErrClassificationService, got %v", err)
	}
}

func TestSectionID(t *testing.T) {
	if id := SectionID(0); id != "chunk_0" {
		t.Errorf("expected chunk_0, got %s", id)
	}

	if id := SectionID(17); id != "chunk_17" {
		t.Errorf("expected chunk_17, got %s", id)
	}
}
