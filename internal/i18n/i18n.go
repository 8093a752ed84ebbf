package i18n

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const DefaultLanguage = "en"

// Strings is the built-in table of header strings keyed by language.
var Strings = map[string]map[string]string{
	"en": {
		"All courses":       "All courses",
		"Help":              "Help",
		"Menu":              "Menu",
		"My Account":        "My Account",
		"Sign In":           "Sign In",
		"Sign Out":          "Sign Out",
		"User account menu": "User account menu",
	},
}

type Translations struct {
	catalog *catalog.Builder
	keys    map[string]bool
	tags    []language.Tag
}

func NewTranslations(defaultLanguage string, translations map[string]map[string]string) (*Translations, error) {
	catalogBuilder := catalog.NewBuilder(catalog.Fallback(language.Make(defaultLanguage)))

	keys := map[string]bool{}
	tags := []language.Tag{}
	for _, lang := range languageOrder(defaultLanguage, translations) {
		tag := language.Make(lang)
		tags = append(tags, tag)
		for key, value := range translations[lang] {
			if err := catalogBuilder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("failed to set translation %s %s %s", lang, key, value)
			}
			keys[key] = true
		}
	}

	return &Translations{
		catalog: catalogBuilder,
		keys:    keys,
		tags:    tags,
	}, nil
}

// Languages lists the catalog languages, the default first and the rest
// sorted, in the order locale negotiation prefers them.
func (t *Translations) Languages() []language.Tag {
	return t.tags
}

func languageOrder(defaultLanguage string, translations map[string]map[string]string) []string {
	langs := slices.Sorted(maps.Keys(translations))
	if i := slices.Index(langs, defaultLanguage); i > 0 {
		langs = slices.Insert(slices.Delete(langs, i, i+1), 0, defaultLanguage)
	}
	return langs
}

// Translator binds the catalog to one locale.
func (t *Translations) Translator(locale string) *Translator {
	tag := language.Make(locale)
	if tag.IsRoot() {
		tag = language.Make(DefaultLanguage)
	}

	return &Translator{
		keys:    t.keys,
		printer: message.NewPrinter(tag, message.Catalog(t.catalog)),
	}
}

type Translator struct {
	keys    map[string]bool
	printer *message.Printer
}

// New returns a translator over the built-in strings.
func New(locale string) *Translator {
	translations, err := NewTranslations(DefaultLanguage, Strings)
	if err != nil {
		panic(err)
	}
	return translations.Translator(locale)
}

// Translate returns the string for key in the active locale, or key itself
// when no translation exists.
func (t *Translator) Translate(key string) string {
	if !t.keys[key] {
		return key
	}
	return t.printer.Sprintf(key)
}
