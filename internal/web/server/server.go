package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/header"
	kdexhttp "kdex.dev/app-header/internal/http"
	"kdex.dev/app-header/internal/i18n"
	"kdex.dev/app-header/internal/page"
	"kdex.dev/app-header/internal/settings"
	"kdex.dev/app-header/internal/web/middleware"
)

// PageFactory builds the served page for the locale negotiated on the first
// request. locale is empty when nothing could be negotiated.
type PageFactory func(locale string) (*page.Page, error)

type pageServer struct {
	mu      sync.Mutex
	newPage PageFactory
	page    *page.Page
}

func New(addr string, newPage PageFactory, translations *i18n.Translations, log logr.Logger) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: Handler(newPage, translations, log),
	}
}

// Handler serves one page holding one header.
func Handler(newPage PageFactory, translations *i18n.Translations, log logr.Logger) http.Handler {
	s := &pageServer{newPage: newPage}

	supported := []language.Tag{}
	if translations != nil {
		supported = translations.Languages()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRender)
	mux.HandleFunc("GET /mode", s.handleGetMode)
	mux.HandleFunc("POST /mode", s.handleSetMode)
	mux.HandleFunc("POST /click", s.handleClick)

	var h http.Handler = mux
	h = middleware.WithLocale(i18n.DefaultLanguage, supported)(h)
	h = middleware.WithLogger(log)(h)

	return h
}

func (s *pageServer) current(r *http.Request) (*page.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil {
		return s.page, nil
	}

	locale := ""
	if tag := middleware.Locale(r.Context()); !tag.IsRoot() {
		locale = tag.String()
	}

	p, err := s.newPage(locale)
	if err != nil {
		return nil, err
	}

	p.Listen()
	if err := p.Ready(); err != nil {
		return nil, err
	}

	logf.FromContext(r.Context()).V(1).Info("page ready", "locale", locale)
	s.page = p

	return p, nil
}

func (s *pageServer) handleRender(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	err := s.do(r, func(p *page.Page, h *header.AppHeader) error {
		return p.Document().Render(&buf)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *pageServer) handleGetMode(w http.ResponseWriter, r *http.Request) {
	var mode settings.Mode

	err := s.do(r, func(p *page.Page, h *header.AppHeader) error {
		mode = h.GetMode()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, mode)
}

func (s *pageServer) handleSetMode(w http.ResponseWriter, r *http.Request) {
	mode := settings.Mode(kdexhttp.GetParam("mode", "", r))
	options := settings.Settings{
		ShowLoginControls: kdexhttp.GetBoolParam("showLoginControls", r),
		Theme:             settings.Theme(kdexhttp.GetParam("theme", "", r)),
	}

	err := s.do(r, func(p *page.Page, h *header.AppHeader) error {
		return h.SetMode(mode, options)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logf.FromContext(r.Context()).V(1).Info("mode set", "mode", mode)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, mode)
}

func (s *pageServer) handleClick(w http.ResponseWriter, r *http.Request) {
	selector := kdexhttp.GetParam("selector", "", r)
	if selector == "" {
		http.Error(w, "selector is required", http.StatusBadRequest)
		return
	}

	found := false
	proceeded := false

	err := s.do(r, func(p *page.Page, h *header.AppHeader) error {
		doc := p.Document()
		target, err := doc.QuerySelector(doc.Root(), selector)
		if err != nil {
			return &badRequestError{err: err}
		}
		if target == nil {
			return nil
		}
		found = true
		proceeded = doc.Click(target)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if !found {
		http.Error(w, fmt.Sprintf("no element matches '%s'", selector), http.StatusNotFound)
		return
	}

	w.Header().Set("X-Default-Prevented", fmt.Sprint(!proceeded))
	w.WriteHeader(http.StatusNoContent)
}

func (s *pageServer) do(r *http.Request, fn func(p *page.Page, h *header.AppHeader) error) error {
	p, err := s.current(r)
	if err != nil {
		return err
	}

	return p.Do(func(h *header.AppHeader) error {
		return fn(p, h)
	})
}

func (s *pageServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	var badRequest *badRequestError
	var invalidMode *settings.InvalidModeError
	var missingHandler *handler.MissingHandlerError

	switch {
	case errors.As(err, &badRequest), errors.As(err, &invalidMode), errors.As(err, &missingHandler):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logf.FromContext(r.Context()).Error(err, "request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}
