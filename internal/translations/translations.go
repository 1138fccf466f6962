// Package translations holds the user-facing text of the web interface.
package translations

// Translations contains all text strings for the application
type Translations struct {
	Lang      string
	PageTitle string

	// Top-level render states
	Loading   string
	LoadError string

	// List pane
	SearchPlaceholder string
	NoStations        string
	StationsShown     string

	// Marker popup
	Gasoline95 string
	DieselA    string
	Currency   string

	InvalidCoordinate string

	MapAttribution string
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) Translations {
	switch lang {
	case "en", "english":
		return GetEnglishTranslations()
	default:
		return GetSpanishTranslations()
	}
}

// GetLanguageFromQuery extracts language from query parameter, defaults to Spanish
func GetLanguageFromQuery(langParam string) string {
	switch langParam {
	case "en", "english":
		return "en"
	default:
		return "es"
	}
}
