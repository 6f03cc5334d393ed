package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"GoldCast/internal/domain/models"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
)

func newTestClassifier(t *testing.T, h http.HandlerFunc) *HTTPClassifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.Analytics.PythonServiceURL = srv.URL
	cfg.Analytics.Timeout = 2 * time.Second
	cfg.Analytics.Retries = 2
	c := NewHTTPClassifier(&cfg)
	c.base.backoff = time.Millisecond
	return c
}

var testInput = models.ClassifierInput{
	Columns:       []string{"RSI", "MOM"},
	Features:      []float64{55.5, 10},
	CandlePattern: "Doji",
	Trigram:       "BullishHigh",
}

func TestHTTPClassifierPredict(t *testing.T) {
	var got predictRequest
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != predictPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"prediction":1}`))
	})

	label, err := c.Predict(context.Background(), models.ModelRef{Name: "best_model_Doji.pkl"}, testInput)
	if err != nil {
		t.Fatal(err)
	}
	if label != models.DirectionUp {
		t.Fatalf("label = %d", label)
	}
	if got.Model != "best_model_Doji.pkl" || got.CandlePattern != "Doji" || len(got.Features) != 2 || got.Columns[1] != "MOM" {
		t.Fatalf("request = %+v", got)
	}
}

func TestHTTPClassifierRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"prediction":0}`))
	})

	label, err := c.Predict(context.Background(), models.ModelRef{Name: "m"}, testInput)
	if err != nil || label != models.DirectionDown {
		t.Fatalf("label = %d, err = %v", label, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestHTTPClassifierNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown model", http.StatusNotFound)
	})

	_, err := c.Predict(context.Background(), models.ModelRef{Name: "m"}, testInput)
	var se *xhttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestHTTPClassifierInvalidLabel(t *testing.T) {
	for _, body := range []string{`{"prediction":2}`, `{}`} {
		c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		if _, err := c.Predict(context.Background(), models.ModelRef{Name: "m"}, testInput); !errors.Is(err, ErrInvalidLabel) {
			t.Fatalf("body %s: err = %v", body, err)
		}
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&xhttp.StatusError{Code: 502}, true},
		{&xhttp.StatusError{Code: 429}, true},
		{&xhttp.StatusError{Code: 400}, false},
		{xhttp.ErrRequestFailed, true},
		{context.Canceled, false},
		{errors.New("decode json: eof"), false},
	}
	for _, c := range cases {
		if got := retryable(c.err); got != c.want {
			t.Fatalf("retryable(%v) = %v", c.err, got)
		}
	}
}
