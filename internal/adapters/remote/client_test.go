package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"estate_hub/internal/adapters/remote"
	"estate_hub/internal/domain"
)

func TestClient_Open_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			if r.URL.Path != "/cosine_sim1.csv" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_, _ = w.Write([]byte(",A\nA,1\n"))
		}
	}))
	defer ts.Close()

	cl, err := remote.New("artifacts", ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rc, err := cl.Open(ctx, "cosine_sim1.csv")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != ",A\nA,1\n" {
		t.Fatalf("unexpected body %q", b)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Open_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := remote.New("artifacts", ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.Open(ctx, "missing.csv")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Predict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if in["sector"] != "sector 45" || in["servant room"] != 1.0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"prediction": 0.75})
	}))
	defer ts.Close()

	cl, _ := remote.New("model", ts.URL, 100)
	got, err := cl.Predict(context.Background(), domain.PriceQuery{PropertyType: "flat", Sector: "sector 45", ServantRoom: 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0.75 {
		t.Fatalf("prediction = %v", got)
	}
}

func TestClient_Predict_MissingValue(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	cl, _ := remote.New("model", ts.URL, 100)
	if _, err := cl.Predict(context.Background(), domain.PriceQuery{}); err == nil {
		t.Fatalf("expected error for empty prediction")
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := remote.New("model", "", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
