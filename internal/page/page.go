package page

import (
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"kdex.dev/app-header/internal/dom"
	"kdex.dev/app-header/internal/header"
)

// ReadyEvent is the document level signal that constructs the default header.
const ReadyEvent = "o.DOMContentLoaded"

// Page holds the one default header of a document. All access to the document
// after Listen should go through Do so callers are serialized. Listeners on
// the document may call Header at any time but must not call Do, Ready or
// GetOrCreate.
type Page struct {
	config header.Config
	doc    *dom.Document
	header atomic.Pointer[header.AppHeader]
	log    logr.Logger

	// mu serializes construction, Ready and Do. readying is set while Ready
	// holds mu.
	mu       sync.Mutex
	readying bool

	// state guards err and remove and is never held while calling out.
	state  sync.Mutex
	err    error
	remove func()
}

// New prepares a page for doc. config describes the default header; its
// Document is always doc.
func New(doc *dom.Document, config header.Config, log logr.Logger) *Page {
	config.Document = doc
	if config.Logger.GetSink() == nil {
		config.Logger = log
	}

	return &Page{
		config: config,
		doc:    doc,
		log:    log,
	}
}

// Listen waits for ReadyEvent on the document. The first signal constructs the
// default header and the listener is dropped; a failed construction is logged
// and the next signal tries again.
func (p *Page) Listen() {
	p.state.Lock()
	defer p.state.Unlock()

	if p.remove != nil || p.header.Load() != nil {
		return
	}

	p.remove = p.doc.AddEventListener(p.doc.Root(), ReadyEvent, func(e *dom.Event) {
		var err error
		if p.readying {
			_, err = p.getOrCreate()
		} else {
			_, err = p.GetOrCreate()
		}
		if err != nil {
			p.log.Error(err, "failed to construct header")
		}
	})
}

// Ready sends ReadyEvent through the document and reports the outcome of the
// last construction attempt.
func (p *Page) Ready() error {
	p.signal()

	p.state.Lock()
	defer p.state.Unlock()

	return p.err
}

func (p *Page) signal() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.readying = true
	defer func() { p.readying = false }()

	p.doc.DispatchEvent(p.doc.Root(), ReadyEvent)
}

// GetOrCreate returns the default header, constructing it when it does not
// exist yet.
func (p *Page) GetOrCreate() (*header.AppHeader, error) {
	if h := p.header.Load(); h != nil {
		return h, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.getOrCreate()
}

// Header returns the default header if it has been constructed.
func (p *Page) Header() (*header.AppHeader, bool) {
	h := p.header.Load()
	return h, h != nil
}

// Do runs fn against the default header, constructing it if needed, while no
// other caller can touch the document.
func (p *Page) Do(fn func(h *header.AppHeader) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.getOrCreate()
	if err != nil {
		return err
	}

	return fn(h)
}

func (p *Page) Document() *dom.Document {
	return p.doc
}

// getOrCreate must be called with mu held.
func (p *Page) getOrCreate() (*header.AppHeader, error) {
	if h := p.header.Load(); h != nil {
		return h, nil
	}

	h, err := header.Init(p.config)

	p.state.Lock()
	defer p.state.Unlock()

	p.err = err
	if err != nil {
		return nil, err
	}

	p.log.V(1).Info("constructed default header", "header", h.ID, "mode", h.GetMode())
	p.header.Store(h)
	p.stopListening()

	return h, nil
}

func (p *Page) stopListening() {
	if p.remove != nil {
		p.remove()
		p.remove = nil
	}
}
