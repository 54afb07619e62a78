package reminder

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

const (
	keyReminderTitle      = "reminder.title"
	keyReminderTitleMajor = "reminder.title.major"
	keyReminderBodyToday  = "reminder.body.today"
	keyReminderBodyAhead  = "reminder.body.ahead"
	keyBriefingTitle      = "briefing.title"
	keyBriefingBody       = "briefing.body"
)

//go:embed locales/*.json
var localeFS embed.FS

// Messages renders notification texts in one language. Languages without a catalogue
// fall back to English.
type Messages struct {
	localizer *i18n.Localizer
}

func NewMessages(lang string) (*Messages, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", name, err)
		}
	}

	return &Messages{localizer: i18n.NewLocalizer(bundle, lang)}, nil
}

func (m *Messages) localize(key string, data map[string]any) string {
	return m.localizePlural(key, data, nil)
}

func (m *Messages) localizePlural(key string, data map[string]any, count any) string {
	msg, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		log.Debugf("missing translation for %s: %v", key, err)
		return key
	}
	return msg
}
