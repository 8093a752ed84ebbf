package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/net/html"
	"sigs.k8s.io/yaml"

	"kdex.dev/app-header/internal/dom"
)

var menuItemType = reflect.TypeFor[MenuItem]()

// Decode turns a generic configuration object into Settings. Keys it does not
// recognize are kept in Extra.
func Decode(raw map[string]any) (Settings, error) {
	var s Settings

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			handlerRefHook,
			helpEntryHook,
		),
		Result:  &s,
		TagName: "json",
	})
	if err != nil {
		return Settings{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return Settings{}, &ConfigError{Err: err}
	}

	return s, nil
}

// DecodeJSON parses data as a JSON object and decodes it.
func DecodeJSON(data []byte) (Settings, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, &ConfigError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Settings{}, &ConfigError{Err: errors.New("invalid JSON: not an object")}
	}

	return Decode(obj)
}

// LoadFile reads an options file written in YAML or JSON.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read options %s: %w", path, err)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Settings{}, &ConfigError{Err: err, Source: path}
	}

	s, err := DecodeJSON(jsonData)
	if err != nil {
		var configErr *ConfigError
		if errors.As(err, &configErr) {
			configErr.Source = path
		}
		return Settings{}, err
	}

	return s, nil
}

// FromDocument reads the global configuration embedded in doc under the
// data-o-app-header-config marker. A page without the marker yields an empty layer.
func FromDocument(doc *dom.Document) (Settings, error) {
	el, err := doc.QuerySelector(doc.Root(), "["+ConfigAttribute+"]")
	if err != nil {
		return Settings{}, err
	}

	if el == nil {
		return Settings{}, nil
	}

	s, err := DecodeJSON([]byte(strings.TrimSpace(dom.TextContent(el))))
	if err != nil {
		var configErr *ConfigError
		if errors.As(err, &configErr) {
			configErr.Source = describe(el)
		}
		return Settings{}, err
	}

	return s, nil
}

func handlerRefHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != handlerRefType {
		return data, nil
	}

	if name, ok := data.(string); ok {
		return Named(name), nil
	}

	return HandlerRef{Invalid: jsonType(data)}, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64, uint64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func helpEntryHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != menuItemType || from.Kind() != reflect.String {
		return data, nil
	}

	return MenuItem{Href: data.(string)}, nil
}

func describe(n *html.Node) string {
	return "<" + n.Data + " " + ConfigAttribute + ">"
}
