package handler

import (
	"fmt"

	"golang.org/x/net/html"

	"kdex.dev/app-header/internal/dom"
	"kdex.dev/app-header/internal/settings"
)

// Registry maps handler names used in configuration to callables.
type Registry map[string]func()

// Bound is a resolved handler ready to be attached to a UI activation.
type Bound func(e *dom.Event)

type Dispatcher interface {
	DispatchEvent(target *html.Node, name string) bool
}

type MissingHandlerError struct {
	Got      string
	Name     string
	Property string
}

func (e *MissingHandlerError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("expected '%s' to be a function, got %s", e.Property, e.Got)
	}
	if e.Name != "" {
		return fmt.Sprintf("expected '%s' to be a function, no handler named '%s'", e.Property, e.Name)
	}
	return fmt.Sprintf("expected '%s' to be a function", e.Property)
}

type Resolver struct {
	Dispatcher Dispatcher
	Registry   Registry
	Root       *html.Node
}

// Resolve turns ref into a Bound handler. property names the setting ref came
// from and is reported when ref cannot be resolved. When eventName is not
// empty the handler dispatches it on the root before calling through.
func (r *Resolver) Resolve(property string, ref settings.HandlerRef, eventName string) (Bound, error) {
	fn := ref.Func

	if fn == nil && ref.Name != "" {
		fn = r.Registry[ref.Name]
	}

	if fn == nil {
		return nil, &MissingHandlerError{Got: ref.Invalid, Name: ref.Name, Property: property}
	}

	return r.wrap(fn, eventName), nil
}

func (r *Resolver) wrap(fn func(), eventName string) Bound {
	return func(e *dom.Event) {
		if e != nil {
			e.PreventDefault()
		}
		if eventName != "" && r.Dispatcher != nil {
			r.Dispatcher.DispatchEvent(r.Root, eventName)
		}
		fn()
	}
}
