package settings

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"
)

// Resolve merges defaults, the page embedded global config and caller options,
// later layers overriding earlier ones key by key. Links are merged per link
// key; every other nested value is replaced wholesale.
func Resolve(defaults, global, options Settings) (Settings, error) {
	s := defaults.Clone()

	for _, layer := range []Settings{global, options} {
		if err := merge(&s, layer); err != nil {
			return Settings{}, err
		}
	}

	if err := Validate(s); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Apply derives the settings for a mode transition from current. current is
// left untouched whether or not the transition is valid.
func Apply(current Settings, mode Mode, options Settings) (Settings, error) {
	next := current.Clone()
	next.Mode = mode

	if err := merge(&next, options); err != nil {
		return Settings{}, err
	}

	if err := Validate(next); err != nil {
		return Settings{}, err
	}

	return next, nil
}

func Validate(s Settings) error {
	if !s.Mode.Valid() {
		return &InvalidModeError{Mode: s.Mode}
	}
	return nil
}

func merge(dst *Settings, layer Settings) error {
	if err := mergo.Merge(dst, layer, mergo.WithOverride, mergo.WithTransformers(layerTransformers{})); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}
	return nil
}

var (
	handlerRefType = reflect.TypeFor[HandlerRef]()
	keyedMapTypes  = map[reflect.Type]bool{
		reflect.TypeFor[Links]():          true,
		reflect.TypeFor[map[string]any](): true,
	}
)

type layerTransformers struct{}

func (layerTransformers) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if keyedMapTypes[typ] {
		return mergeKeys
	}

	if typ == handlerRefType {
		return func(dst, src reflect.Value) error {
			if ref, ok := src.Interface().(HandlerRef); ok && !ref.IsZero() && dst.CanSet() {
				dst.Set(src)
			}
			return nil
		}
	}

	switch typ.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice:
		return replaceNonNil
	}

	return nil
}

// mergeKeys writes a fresh map holding dst's entries overridden by src's.
func mergeKeys(dst, src reflect.Value) error {
	if src.IsNil() || src.Len() == 0 || !dst.CanSet() {
		return nil
	}

	out := reflect.MakeMapWithSize(dst.Type(), dst.Len()+src.Len())
	for iter := dst.MapRange(); iter.Next(); {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	for iter := src.MapRange(); iter.Next(); {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	dst.Set(out)

	return nil
}

func replaceNonNil(dst, src reflect.Value) error {
	if !src.IsNil() && dst.CanSet() {
		dst.Set(src)
	}
	return nil
}
