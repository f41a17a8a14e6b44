package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestFunc_Extract(t *testing.T) {
	boom := errors.New("model not loaded")
	f := Func(func(ctx context.Context, text string) ([]string, error) {
		if text == "" {
			return nil, boom
		}
		return []string{text}, nil
	})

	got, err := f.Extract(context.Background(), "AIIMS")
	if err != nil || !reflect.DeepEqual(got, []string{"AIIMS"}) {
		t.Errorf("unexpected result %v, %v", got, err)
	}
	if _, err := f.Extract(context.Background(), ""); !errors.Is(err, boom) {
		t.Errorf("expected wrapped function error, got %v", err)
	}
}

func TestStatic_ReturnsCopy(t *testing.T) {
	s := Static{"Anil Gupta", "AIIMS"}

	got, _ := s.Extract(context.Background(), "ignored")
	got[0] = "changed"

	again, _ := s.Extract(context.Background(), "ignored")
	if again[0] != "Anil Gupta" {
		t.Error("Static was mutated through a returned slice")
	}

	empty, err := Static(nil).Extract(context.Background(), "x")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", empty, err)
	}
}

func TestHeuristic_Extract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "person organization date",
			input:    "Dr. Anil Gupta visited AIIMS on January 15.",
			expected: []string{"Anil Gupta", "AIIMS", "January 15"},
		},
		{
			name:     "sentence-initial article dropped",
			input:    "The cat sat.",
			expected: []string{},
		},
		{
			name:     "duplicates kept in order",
			input:    "Kyiv is big. Lviv and Kyiv are cities.",
			expected: []string{"Kyiv", "Lviv", "Kyiv"},
		},
		{
			name:     "multi-word with article kept",
			input:    "She flew to The Hague",
			expected: []string{"The Hague"},
		},
		{
			name:     "non-latin capitals",
			input:    "Зустріч у Києві з Олександром",
			expected: []string{"Зустріч", "Києві", "Олександром"},
		},
		{
			name:     "empty",
			input:    "",
			expected: []string{},
		},
	}

	h := NewHeuristic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Extract(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHeuristic_ExtraStopwords(t *testing.T) {
	h := NewHeuristic("Monday")

	got, _ := h.Extract(context.Background(), "Monday with Anil")
	if !reflect.DeepEqual(got, []string{"Anil"}) {
		t.Errorf("expected extra stopword dropped, got %q", got)
	}
}

func TestOllama_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["format"] != "json" {
			t.Errorf("expected json format, got %v", req["format"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"response": "<think>people first</think>```json\n{\"entities\": [\"Anil Gupta\", \"AIIMS\", \"Mumbai\", \"January 15\"]}\n```",
		})
	}))
	defer server.Close()

	o := &Ollama{baseURL: server.URL, model: "llama3.2", client: server.Client()}

	got, err := o.Extract(context.Background(), "Dr. Anil Gupta visited AIIMS on January 15.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Mumbai is not in the text and must be dropped.
	want := []string{"Anil Gupta", "AIIMS", "January 15"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOllama_Extract_EmptyText(t *testing.T) {
	o := NewOllama("http://localhost:19999", "")

	got, err := o.Extract(context.Background(), "")
	if err != nil || len(got) != 0 {
		t.Errorf("expected no entities and no call, got %v, %v", got, err)
	}
}

func TestOllama_Extract_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	o := &Ollama{baseURL: server.URL, model: "llama3.2", client: server.Client()}

	if _, err := o.Extract(context.Background(), "AIIMS"); err == nil {
		t.Error("expected error for non-OK status")
	}
}

func TestOllama_Extract_BadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "I could not find any."})
	}))
	defer server.Close()

	o := &Ollama{baseURL: server.URL, model: "llama3.2", client: server.Client()}

	if _, err := o.Extract(context.Background(), "AIIMS"); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}
