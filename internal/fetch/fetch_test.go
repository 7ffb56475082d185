package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Quantum Computing Primer</title>
  <style>body { color: red; }</style>
  <script>alert("tracking");</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <main>
    <h1>Quantum Computing</h1>
    <p>Qubits hold superpositions of states.</p>
  </main>
  <footer>Copyright 2026</footer>
</body>
</html>`

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	text, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !strings.Contains(text, "Qubits hold superpositions") {
		t.Errorf("expected body text, got %q", text)
	}
	for _, dropped := range []string{"alert", "color: red", "Home", "Copyright"} {
		if strings.Contains(text, dropped) {
			t.Errorf("expected %q to be stripped, got %q", dropped, text)
		}
	}
}

func TestFetchPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  just text  "))
	}))
	defer srv.Close()

	text, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if text != "just text" {
		t.Errorf("expected trimmed plain text, got %q", text)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := New().Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchEmptyURL(t *testing.T) {
	if _, err := New().Fetch(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestFetchInvalidPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not a pdf"))
	}))
	defer srv.Close()

	if _, err := New().Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for invalid pdf body")
	}
}

func TestFetchAllSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("good page"))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	results := New().FetchAll(context.Background(), []string{srv.URL + "/bad", srv.URL + "/ok"})
	if len(results) != 1 {
		t.Fatalf("expected 1 successful fetch, got %d", len(results))
	}
	if results[0].URL != srv.URL+"/ok" || results[0].Content != "good page" {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestFetchAllEmpty(t *testing.T) {
	if results := New().FetchAll(context.Background(), nil); results != nil {
		t.Errorf("expected nil for empty input, got %+v", results)
	}
}
