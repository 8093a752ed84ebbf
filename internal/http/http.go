package http

import (
	"net/http"
	"strconv"

	"golang.org/x/text/language"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// LocaleParam overrides Accept-Language negotiation when present.
const LocaleParam = "l10n"

// GetParam reads name from the route pattern, then the query string, then a
// submitted form.
func GetParam(name string, defaultValue string, r *http.Request) string {
	value := r.PathValue(name)

	if value == "" {
		value = r.URL.Query().Get(name)
	}

	if value == "" {
		value = r.PostFormValue(name)
	}

	if value == "" {
		return defaultValue
	}
	return value
}

// GetBoolParam is GetParam for flags. Absent or unparsable values yield nil.
func GetBoolParam(name string, r *http.Request) *bool {
	value := GetParam(name, "", r)
	if value == "" {
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		logf.FromContext(r.Context()).V(1).Info("ignoring invalid boolean parameter", "name", name, "value", value)
		return nil
	}
	return &b
}

// GetLang picks the request language among supportedLangs from the l10n
// parameter or the Accept-Language header, falling back to defaultLang.
func GetLang(r *http.Request, defaultLang string, supportedLangs []language.Tag) language.Tag {
	log := logf.FromContext(r.Context())

	if fromParams := GetParam(LocaleParam, "", r); fromParams != "" {
		tag, err := language.Parse(fromParams)
		if err != nil || tag.IsRoot() {
			log.Info("parsing user supplied 'l10n' parameter failed, falling back to default", "l10n", fromParams, "defaultLang", defaultLang)
			return language.Make(defaultLang)
		}
		return tag
	}

	if len(supportedLangs) == 0 {
		return language.Make(defaultLang)
	}

	preferences, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(preferences) == 0 {
		return language.Make(defaultLang)
	}

	matcher := language.NewMatcher(supportedLangs)
	_, index, confidence := matcher.Match(preferences...)
	if confidence == language.No {
		return language.Make(defaultLang)
	}

	return supportedLangs[index]
}
