package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeHistory(t *testing.T, dir, name string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Price,Open,High,Low,Vol.,Change %\n")
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f := float64(i)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d,0.10%%\n",
			start.AddDate(0, 0, i).Format("2006-01-02"), 100.5+f, 100+f, 101+f, 99.5+f, 1000+i)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunnerWritesEveryFormat(t *testing.T) {
	in := t.TempDir()
	src := writeHistory(t, in, "gold.csv", 30)
	for _, format := range []string{"csv", "json", "parquet"} {
		out := filepath.Join(t.TempDir(), "out")
		r, err := NewRunner(format, out, WithWorkers(2))
		if err != nil {
			t.Fatal(err)
		}
		results := r.Run(context.Background(), []string{src})
		if Failed(results) != 0 {
			t.Fatalf("%s: %v", format, results[0].Err)
		}
		res := results[0]
		if res.RowsIn != 30 || res.RowsOut != 20 {
			t.Fatalf("%s: rows %d/%d", format, res.RowsIn, res.RowsOut)
		}
		if res.Output != filepath.Join(out, "gold_features."+format) {
			t.Fatalf("output = %s", res.Output)
		}
		if st, err := os.Stat(res.Output); err != nil || st.Size() == 0 {
			t.Fatalf("%s: stat %v", format, err)
		}
	}
}

func TestRunnerContinuesAfterFailure(t *testing.T) {
	in := t.TempDir()
	good := writeHistory(t, in, "a.csv", 25)
	bad := filepath.Join(in, "bad.csv")
	if err := os.WriteFile(bad, []byte("Date,Price\n2024-01-01,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(in, "missing.csv")
	short := writeHistory(t, in, "short.csv", 5)

	r, err := NewRunner("csv", t.TempDir(), WithWorkers(3), WithParallelIndicators(true))
	if err != nil {
		t.Fatal(err)
	}
	results := r.Run(context.Background(), []string{good, bad, missing, short})
	if len(results) != 4 || Failed(results) != 2 {
		t.Fatalf("failed = %d", Failed(results))
	}
	if results[0].Err != nil || results[1].Err == nil || results[2].Err == nil || results[3].Err != nil {
		t.Fatalf("results = %+v", results)
	}
	if results[3].RowsOut != 0 || len(results[3].Warnings) == 0 {
		t.Fatalf("short input = %+v", results[3])
	}
}

func TestNewRunnerRejectsFormat(t *testing.T) {
	if _, err := NewRunner("xml", t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunnerRejectsDuplicateOutput(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	first := writeHistory(t, filepath.Join(root, "a"), "x.csv", 25)
	second := writeHistory(t, filepath.Join(root, "b"), "x.csv", 30)

	r, err := NewRunner("csv", filepath.Join(root, "out"), WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	results := r.Run(context.Background(), []string{first, second})
	if results[0].Err != nil || results[0].RowsIn != 25 {
		t.Fatalf("first = %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrDuplicateOutput) {
		t.Fatalf("second err = %v", results[1].Err)
	}
	if Failed(results) != 1 {
		t.Fatalf("failed = %d", Failed(results))
	}
}
