// Package server serves rendered session logs over HTTP(S): an index of
// sessions, raw markdown for machines, and rendered HTML for humans. It is
// strictly read-only over the log directory.
package server

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// logNameRe matches well-formed log filenames (sans extension):
// YYYY-MM-DD-HHMM-{session}[-subagent-{type}-{agent}]
var logNameRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})-(\d{4})-(\w+?)(?:-subagent-(.+)-(\w+))?$`,
)

// labelRe extracts an optional free-text label from the first header line,
// e.g. "# Session `abc123` — 2026-02-17 18:56 — My Label".
var labelRe = regexp.MustCompile(
	`^#\s+(?:Session|Subagent:\s+\S+)\s+.+?\x{2014}\s+\d{4}-\d{2}-\d{2}(?:\s+\d{2}:\d{2})?\s*\x{2014}\s+(.+)$`,
)

// Server handles log-viewer HTTP requests.
type Server struct {
	logDir string
	md     goldmark.Markdown
	mux    *http.ServeMux
}

// New creates a Server reading logs from logDir.
func New(logDir string) *Server {
	s := &Server{
		logDir: logDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// logs embed <details>/<summary> blocks on purpose
			goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
		),
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /", s.handleGet)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	if path == "" {
		s.handleIndex(w, r)
		return
	}

	// raw markdown: /name.md
	if strings.HasSuffix(path, ".md") {
		filePath := filepath.Join(s.logDir, filepath.Base(path))
		content, err := os.ReadFile(filePath)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Write(content)
		return
	}

	// rendered HTML: /name
	s.handleRendered(w, r, filepath.Base(path))
}

// logEntry is one row of the index page.
type logEntry struct {
	Slug      string
	Date      string
	Time      string
	Session   string
	AgentType string
	AgentID   string
	Label     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries := s.listLogs()
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, entries); err != nil {
		slog.Error("render index", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleRendered(w http.ResponseWriter, r *http.Request, name string) {
	mdPath := filepath.Join(s.logDir, name+".md")
	content, err := os.ReadFile(mdPath)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	var body bytes.Buffer
	if err := s.md.Convert(content, &body); err != nil {
		slog.Error("render markdown", "file", mdPath, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: name, Body: template.HTML(body.String())})
	if err != nil {
		slog.Error("render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// listLogs collects well-formed log files, newest first.
func (s *Server) listLogs() []logEntry {
	files, err := os.ReadDir(s.logDir)
	if err != nil {
		return nil
	}

	var entries []logEntry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		m := logNameRe.FindStringSubmatch(slug)
		if m == nil {
			continue
		}
		entries = append(entries, logEntry{
			Slug:      slug,
			Date:      m[1],
			Time:      m[2][:2] + ":" + m[2][2:],
			Session:   m[3],
			AgentType: m[4],
			AgentID:   m[5],
			Label:     readLabel(filepath.Join(s.logDir, name)),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug > entries[j].Slug })
	return entries
}

// readLabel extracts the optional trailing label from a log's first line.
func readLabel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 4096)
	n, _ := f.Read(buf)
	firstLine, _, _ := strings.Cut(string(buf[:n]), "\n")
	m := labelRe.FindStringSubmatch(strings.TrimRight(firstLine, "\r"))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ListenAddr formats the host:port address for the listener.
func ListenAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>cc-session-logs</title>
<style>
  body {
    max-width: 960px;
    margin: 0 auto;
    padding: 2rem 1rem;
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
    background: #0d1117;
    color: #e6edf3;
  }
  header { border-bottom: 1px solid #30363d; padding-bottom: 0.5rem; }
  h1 { margin: 0; }
  a { color: #58a6ff; text-decoration: none; }
  a:hover { text-decoration: underline; }
  .session {
    display: flex;
    justify-content: space-between;
    align-items: center;
    padding: 0.75rem 0.5rem;
    border-bottom: 1px solid #21262d;
    border-radius: 6px;
  }
  .session:hover { background: #161b22; }
  .session-name { font-family: monospace; font-size: 0.95rem; }
  .session-name a { color: inherit; }
  .formats { font-size: 0.8rem; opacity: 0.6; }
  .formats a { margin-left: 0.75rem; }
  .subagent { opacity: 0.7; font-size: 0.85rem; margin-left: 0.5rem; }
  .label { margin-left: 0.75rem; font-style: italic; color: #8b949e; }
  .empty { font-style: italic; color: #8b949e; }
</style>
</head>
<body>
<header><h1>cc-session-logs</h1></header>
{{if not .}}<p class="empty">No session logs found.</p>{{end}}
{{range .}}<div class="session">
  <span class="session-name"><a href="/{{.Slug}}">{{.Date}} {{.Time}} &mdash; {{.Session}}{{if .AgentType}}<span class="subagent">{{.AgentType}} {{.AgentID}}</span>{{end}}{{if .Label}}<span class="label">{{.Label}}</span>{{end}}</a></span>
  <span class="formats"><a href="/{{.Slug}}">html</a><a href="/{{.Slug}}.md">md</a></span>
</div>
{{end}}</body>
</html>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body {
    max-width: 960px;
    margin: 0 auto;
    padding: 2rem 1rem;
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
    background: #0d1117;
    color: #e6edf3;
  }
  a { color: #58a6ff; text-decoration: none; }
  a:hover { text-decoration: underline; }
  pre, code { background: #161b22; border-radius: 6px; }
  pre { padding: 0.75rem; overflow-x: auto; }
  blockquote { border-left: 3px solid #30363d; margin-left: 0; padding-left: 1rem; color: #8b949e; }
  nav { margin-bottom: 1.5rem; }
</style>
</head>
<body>
<nav><a href="/">&larr; All sessions</a></nav>
<div class="markdown-body">
{{.Body}}
</div>
</body>
</html>
`))
