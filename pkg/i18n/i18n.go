package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var localeFiles = []string{
	"locales/active.en.json",
	"locales/active.pt-BR.json",
}

// Bundle holds the translated messages for every supported language.
type Bundle struct {
	b *goi18n.Bundle
}

func New() (*Bundle, error) {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, f := range localeFiles {
		if _, err := b.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return &Bundle{b: b}, nil
}

// Localize translates messageID for the languages of an Accept-Language header.
// It returns fallback when the message is unknown.
func (b *Bundle) Localize(acceptLanguage, messageID, fallback string, data map[string]interface{}) string {
	if b == nil || messageID == "" {
		return fallback
	}
	loc := goi18n.NewLocalizer(b.b, acceptLanguage)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
