// Package demoserver serves a small fake shop whose pages carry brand data in
// the different shapes the extractor understands.
package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/raysh454/ethicheck/internal/logging"
)

// DemoServer serves the demo pages and a control panel for switching
// variants.
type DemoServer struct {
	cfg    Config
	pages  map[string]*pageState
	mu     sync.RWMutex
	logger logging.Logger
}

type pageState struct {
	page     Page
	tmpl     map[string]*template.Template
	selected string
}

// NewDemoServer parses every page variant up front.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if cfg.ShopName == "" {
		cfg.ShopName = DefaultConfig().ShopName
	}
	s := &DemoServer{
		cfg:    cfg,
		pages:  make(map[string]*pageState),
		logger: logging.OrNop(logger).With(logging.Component("demoserver")),
	}
	for _, p := range AllPages() {
		st := &pageState{page: p, tmpl: make(map[string]*template.Template), selected: p.Default}
		for name, body := range p.Variants {
			t, err := template.New(p.Path + "#" + name).Parse(body)
			if err != nil {
				return nil, fmt.Errorf("parse %s variant %s: %w", p.Path, name, err)
			}
			st.tmpl[name] = t
		}
		s.pages[p.Path] = st
	}
	return s, nil
}

// Handler returns the routes, for tests and for embedding.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		pattern := "GET " + path
		if path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, s.pageHandler(path))
	}

	mux.HandleFunc("GET /demo/control", s.controlPanelHandler)
	mux.HandleFunc("GET /demo/variants", s.getVariantsHandler)
	mux.HandleFunc("POST /demo/set-variant", s.setVariantHandler)
	mux.HandleFunc("POST /demo/reset", s.resetVariantsHandler)
	return mux
}

// Start serves until ctx is canceled.
func (s *DemoServer) Start(ctx context.Context) error {
	hs := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	s.logger.Info("demo shop listening",
		logging.Field{Key: "url", Value: fmt.Sprintf("http://localhost:%d/", s.cfg.Port)},
		logging.Field{Key: "control_panel", Value: fmt.Sprintf("http://localhost:%d/demo/control", s.cfg.Port)})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// Selected returns the variant currently served at path.
func (s *DemoServer) Selected(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.pages[path]
	if !ok {
		return "", false
	}
	return st.selected, true
}

// SetVariant switches the variant served at path.
func (s *DemoServer) SetVariant(path, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.pages[path]
	if !ok {
		return fmt.Errorf("unknown page %q", path)
	}
	if _, ok := st.tmpl[variant]; !ok {
		return fmt.Errorf("page %s has no variant %q", path, variant)
	}
	st.selected = variant
	return nil
}

func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		st := s.pages[path]
		t := st.tmpl[st.selected]
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := t.Execute(w, struct{ Shop string }{s.cfg.ShopName}); err != nil {
			s.logger.Warn("render page", logging.Field{Key: "path", Value: path}, logging.Err(err))
		}
	}
}

// PageInfo describes one page for /demo/variants.
type PageInfo struct {
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Selected    string   `json:"selected"`
	Variants    []string `json:"variants"`
}

func (s *DemoServer) pageInfos() []PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]PageInfo, 0, len(s.pages))
	for path, st := range s.pages {
		var names []string
		for name := range st.tmpl {
			names = append(names, name)
		}
		sort.Strings(names)
		infos = append(infos, PageInfo{
			Path:        path,
			Description: st.page.Description,
			Selected:    st.selected,
			Variants:    names,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos
}

func (s *DemoServer) getVariantsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pageInfos())
}

func (s *DemoServer) setVariantHandler(w http.ResponseWriter, r *http.Request) {
	path, variant := r.FormValue("path"), r.FormValue("variant")
	if err := s.SetVariant(path, variant); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	s.logger.Info("variant switched", logging.Field{Key: "path", Value: path}, logging.Field{Key: "variant", Value: variant})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "path": path, "variant": variant})
}

func (s *DemoServer) resetVariantsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	for _, st := range s.pages {
		st.selected = st.page.Default
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All pages reset to their default variant"})
}

func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := controlPanel.Execute(w, s.pageInfos()); err != nil {
		s.logger.Warn("render control panel", logging.Err(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var controlPanel = template.Must(template.New("control").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Demo Shop Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        .page-card { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .page-path { font-weight: bold; color: #007bff; text-decoration: none; }
        .page-desc { color: #666; margin: 5px 0; }
        .variant-btn { padding: 6px 14px; border: none; border-radius: 4px; cursor: pointer; }
        .variant-btn.active { background: #007bff; color: white; }
        .variant-btn.inactive { background: #e9ecef; color: #333; }
    </style>
</head>
<body>
    <h1>Demo Shop Control Panel</h1>
    <p>Switch a page's variant, then reload it in the watched tab to see the banner change.</p>
    <button onclick="resetAll()">Reset all</button>
    {{range .}}
    <div class="page-card">
        <a href="{{.Path}}" target="_blank" class="page-path">{{.Path}}</a>
        <div class="page-desc">{{.Description}}</div>
        {{$sel := .Selected}}{{$path := .Path}}
        {{range .Variants}}
        <button class="variant-btn {{if eq . $sel}}active{{else}}inactive{{end}}"
                onclick="setVariant({{$path}}, {{.}})">{{.}}</button>
        {{end}}
    </div>
    {{end}}
    <script>
        function setVariant(path, variant) {
            fetch('/demo/set-variant', {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: 'path=' + encodeURIComponent(path) + '&variant=' + encodeURIComponent(variant)
            }).then(() => location.reload());
        }
        function resetAll() {
            fetch('/demo/reset', {method: 'POST'}).then(() => location.reload());
        }
    </script>
</body>
</html>`))
