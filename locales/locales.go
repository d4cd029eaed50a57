package locales

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Files lists the message files loaded into the bundle, relative to the locales directory.
var Files = []string{"active.en.json", "active.fil.json"}

func GetBundle(baseDir string) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range Files {
		if _, err := bundle.LoadMessageFile(filepath.Join(baseDir, "locales", name)); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	return bundle, nil
}
