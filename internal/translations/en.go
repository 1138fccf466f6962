package translations

// GetEnglishTranslations returns all English text strings
func GetEnglishTranslations() Translations {
	return Translations{
		Lang:      "en",
		PageTitle: "Spanish Fuel Stations",

		Loading:   "Loading fuel station data...",
		LoadError: "Error loading fuel station data. Please try again later.",

		SearchPlaceholder: "Search fuel station...",
		NoStations:        "No fuel station matches the search.",
		StationsShown:     "stations",

		Gasoline95: "Gasoline 95:",
		DieselA:    "Diesel A:",
		Currency:   "€",

		InvalidCoordinate: "This station has no valid coordinates.",

		MapAttribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	}
}
