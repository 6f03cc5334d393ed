package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"GoldCast/internal/domain/models"
	"GoldCast/internal/repository"
	"GoldCast/internal/service/ratelimit"
	"GoldCast/internal/usecase"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
)

type stubClassifier struct{ label int }

func (s stubClassifier) Predict(context.Context, models.ModelRef, models.ClassifierInput) (int, error) {
	return s.label, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func historyCSV(n int) string {
	var b strings.Builder
	b.WriteString("Date,Price,Open,High,Low,Vol.,Change %\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f := float64(i)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%.2fK,0.50%%\n",
			start.AddDate(0, 0, i).Format("01/02/2006"),
			100.5+f, 100+f, 101+f, 99.5+f, 1+0.01*f)
	}
	return b.String()
}

type testServer struct {
	srv   *xhttp.Server
	store *repository.MemoryPredictionStore
}

func newTestServer(t *testing.T, modelNames []string, rl *ratelimit.Limiter, maxUpload int64) *testServer {
	t.Helper()
	dir := t.TempDir()
	for _, n := range modelNames {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("m"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var cfg config.Config
	cfg.Analytics.MinRows = 20

	store := repository.NewMemoryPredictionStore(100)
	builder := usecase.NewFeatureBuilder(&cfg)
	predict := usecase.NewPredictUseCase(&cfg, builder, repository.NewFileModelRegistry(dir),
		stubClassifier{label: 1}, store, repository.NoopPublisher{}, nil, nil, nil)
	h := NewPredictEchoHandler(nil, predict, usecase.NewFeaturesUseCase(builder, nil), rl, maxUpload)
	return &testServer{
		srv:   xhttp.NewServer([]xhttp.Handler{h}, xhttp.WithMetricsPath("")),
		store: store,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.srv.Echo().ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if env.Status != rec.Code {
		t.Fatalf("envelope status %d != http status %d", env.Status, rec.Code)
	}
	return rec.Code, env
}

func uploadRequest(t *testing.T, method, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", "text/csv")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte(content))
	_ = w.Close()
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var defaultModels = []string{"best_model_Spinning_Top_Bullish.pkl", "best_model_Doji.pkl"}

func TestPredictCSV(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 1<<20)
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		code, env := s.do(t, uploadRequest(t, method, "/predict_csv", "gold.csv", historyCSV(25)))
		if code != http.StatusOK {
			t.Fatalf("%s: code = %d %s", method, code, env.Message)
		}
		var p models.Prediction
		if err := json.Unmarshal(env.Data, &p); err != nil {
			t.Fatal(err)
		}
		if p.CandlePattern != "Spinning Top Bullish" || p.Label != 1 || p.Interpretation != "price expected to rise tomorrow" {
			t.Fatalf("prediction = %+v", p)
		}
		if p.RowsIn != 25 || p.RowsOut != 15 || len(p.Features) != 20 {
			t.Fatalf("rows = %d/%d features = %d", p.RowsIn, p.RowsOut, len(p.Features))
		}
	}
	if recent, _ := s.store.Recent(context.Background(), 10); len(recent) != 2 {
		t.Fatalf("stored = %d", len(recent))
	}
}

func TestPredictCSVRejections(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 1<<20)

	noFile := httptest.NewRequest(http.MethodPost, "/predict_csv", nil)
	cases := []struct {
		name    string
		req     *http.Request
		code    int
		message string
	}{
		{"missing file", noFile, http.StatusBadRequest, "csv file is required"},
		{"empty filename", uploadRequest(t, http.MethodPost, "/predict_csv", "", historyCSV(25)), http.StatusBadRequest, "empty filename"},
		{"too few rows", uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(19)), http.StatusBadRequest, "at least 20 OHLCV rows are required"},
		{"missing column", uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", "Date,Price\n01/02/2024,1\n"), http.StatusBadRequest, ""},
	}
	for _, c := range cases {
		code, env := s.do(t, c.req)
		if code != c.code {
			t.Fatalf("%s: code = %d (%s)", c.name, code, env.Message)
		}
		if c.message != "" && env.Message != c.message {
			t.Fatalf("%s: message = %q", c.name, env.Message)
		}
	}
}

func TestPredictCSVModelNotFound(t *testing.T) {
	s := newTestServer(t, []string{"best_model_Hammer.pkl"}, nil, 1<<20)
	code, _ := s.do(t, uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(25)))
	if code != http.StatusNotFound {
		t.Fatalf("code = %d", code)
	}
}

func TestPredictCSVTooLarge(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 256)
	code, _ := s.do(t, uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(25)))
	if code != http.StatusRequestEntityTooLarge {
		t.Fatalf("code = %d", code)
	}
}

func TestPredictCSVRateLimited(t *testing.T) {
	s := newTestServer(t, defaultModels, ratelimit.New(1, 0.001), 1<<20)
	code, _ := s.do(t, uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(25)))
	if code != http.StatusOK {
		t.Fatalf("first code = %d", code)
	}
	code, _ = s.do(t, uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(25)))
	if code != http.StatusTooManyRequests {
		t.Fatalf("second code = %d", code)
	}
}

func TestFeaturesEndpoint(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 1<<20)
	code, env := s.do(t, uploadRequest(t, http.MethodPost, "/api/features?limit=3", "a.csv", historyCSV(30)))
	if code != http.StatusOK {
		t.Fatalf("code = %d %s", code, env.Message)
	}
	var table struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			Index         int       `json:"index"`
			Values        []float64 `json:"values"`
			CandlePattern string    `json:"candle_pattern"`
		} `json:"rows"`
		RowsIn int `json:"rows_in"`
	}
	if err := json.Unmarshal(env.Data, &table); err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 3 || table.Rows[2].Index != 29 || table.RowsIn != 30 || len(table.Columns) != 20 {
		t.Fatalf("table = %+v", table)
	}

	code, _ = s.do(t, uploadRequest(t, http.MethodPost, "/api/features?limit=9999", "a.csv", historyCSV(30)))
	if code != http.StatusBadRequest {
		t.Fatalf("limit validation code = %d", code)
	}
}

func TestModelsAndHistory(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 1<<20)
	code, env := s.do(t, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if code != http.StatusOK {
		t.Fatalf("models code = %d", code)
	}
	var list struct {
		Rows  []models.ModelRef `json:"rows"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || list.Rows[0].Name != "best_model_Doji.pkl" {
		t.Fatalf("models = %+v", list)
	}

	s.do(t, uploadRequest(t, http.MethodPost, "/predict_csv", "a.csv", historyCSV(25)))
	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/predictions?limit=5", nil))
	if code != http.StatusOK {
		t.Fatalf("history code = %d", code)
	}
	var hist struct {
		Rows  []models.Prediction `json:"rows"`
		Total int64               `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &hist); err != nil {
		t.Fatal(err)
	}
	if hist.Total != 1 || hist.Rows[0].CandlePattern != "Spinning Top Bullish" {
		t.Fatalf("history = %+v", hist)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, defaultModels, nil, 1<<20)
	if code, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)); code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
}
