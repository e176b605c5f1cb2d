package server

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestIndexListsWellFormedLogsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2026-02-16-1856-abc12345.md", "# Session `abc12345` — 2026-02-16 18:56\n")
	writeLog(t, dir, "2026-02-17-0900-def67890.md", "# Session `def67890` — 2026-02-17 09:00\n")
	writeLog(t, dir, "scratch-notes.md", "not a session log\n")
	writeLog(t, dir, ".converter-errors.log", "boom\n")

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	code, body := get(t, ts, "/")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if strings.Contains(body, "scratch-notes") {
		t.Errorf("malformed names must not be listed:\n%s", body)
	}
	newer := strings.Index(body, "def67890")
	older := strings.Index(body, "abc12345")
	if newer < 0 || older < 0 {
		t.Fatalf("expected both sessions listed:\n%s", body)
	}
	if newer > older {
		t.Errorf("newest session should list first:\n%s", body)
	}
}

func TestIndexShowsSubagentAndLabel(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2026-02-17-1900-abc12345-subagent-Explore-dddd1111.md",
		"# Subagent: Explore `dddd1111` — 2026-02-17 19:00 — Deep dive\n")

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	_, body := get(t, ts, "/")
	if !strings.Contains(body, "Explore") {
		t.Errorf("subagent type missing from index:\n%s", body)
	}
	if !strings.Contains(body, "Deep dive") {
		t.Errorf("first-line label missing from index:\n%s", body)
	}
}

func TestRawMarkdownEndpoint(t *testing.T) {
	dir := t.TempDir()
	content := "# Session `abc12345` — 2026-02-16 18:56\n\n---\n**User:**\n> hi\n"
	writeLog(t, dir, "2026-02-16-1856-abc12345.md", content)

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	code, body := get(t, ts, "/2026-02-16-1856-abc12345.md")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body != content {
		t.Errorf("raw endpoint must return the file verbatim:\n%q", body)
	}
}

func TestRenderedHTMLEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2026-02-16-1856-abc12345.md",
		"# Session `abc12345` — 2026-02-16 18:56\n\n---\n**User:**\n> hello there\n\n<details>\n<summary>long</summary>\n<pre><code>x</code></pre>\n</details>\n")

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	code, body := get(t, ts, "/2026-02-16-1856-abc12345")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if !strings.Contains(body, "<h1>") {
		t.Errorf("markdown heading should render to HTML:\n%s", body)
	}
	if !strings.Contains(body, "<details>") {
		t.Errorf("embedded HTML blocks must pass through:\n%s", body)
	}
	if !strings.Contains(body, "All sessions") {
		t.Errorf("page chrome missing:\n%s", body)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	ts := httptest.NewServer(New(t.TempDir()))
	defer ts.Close()

	if code, _ := get(t, ts, "/nope"); code != http.StatusNotFound {
		t.Errorf("status %d, want 404", code)
	}
	if code, _ := get(t, ts, "/nope.md"); code != http.StatusNotFound {
		t.Errorf("status %d, want 404", code)
	}
}

func TestPathTraversalBlocked(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(t.TempDir(), "secret.md")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	code, body := get(t, ts, "/..%2F"+filepath.Base(filepath.Dir(secret))+"%2Fsecret.md")
	if code == http.StatusOK && strings.Contains(body, "secret") {
		t.Error("request escaped the log directory")
	}
}

func TestReadLabel(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		first string
		want  string
	}{
		{"# Session `abc12345` — 2026-02-17 18:56 — My Label", "My Label"},
		{"# Subagent: Explore `dddd1111` — 2026-02-17 19:00 — Another", "Another"},
		{"# Session `abc12345` — 2026-02-17 18:56", ""},
		{"plain text", ""},
	}
	for i, tc := range cases {
		path := filepath.Join(dir, "label"+string(rune('a'+i))+".md")
		if err := os.WriteFile(path, []byte(tc.first+"\nmore\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := readLabel(path); got != tc.want {
			t.Errorf("readLabel(%q) = %q, want %q", tc.first, got, tc.want)
		}
	}
}

func TestEnsureCertGeneratesUsablePair(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath, err := EnsureCert(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tls.LoadX509KeyPair(certPath, keyPath); err != nil {
		t.Fatalf("generated pair unusable: %v", err)
	}

	// second call reuses the existing pair
	before, _ := os.ReadFile(certPath)
	if _, _, err := EnsureCert(dir); err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(certPath)
	if string(before) != string(after) {
		t.Error("existing certificate should be reused, not regenerated")
	}
}
