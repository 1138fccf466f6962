package translations

// GetSpanishTranslations returns all Spanish text strings
func GetSpanishTranslations() Translations {
	return Translations{
		Lang:      "es",
		PageTitle: "Gasolineras de España",

		Loading:   "Cargando datos de gasolineras...",
		LoadError: "Error al cargar los datos de las gasolineras. Por favor, intente de nuevo más tarde.",

		SearchPlaceholder: "Buscar gasolinera...",
		NoStations:        "Ninguna gasolinera coincide con la búsqueda.",
		StationsShown:     "gasolineras",

		Gasoline95: "Gasolina 95:",
		DieselA:    "Gasóleo A:",
		Currency:   "€",

		InvalidCoordinate: "Esta gasolinera no tiene coordenadas válidas.",

		MapAttribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	}
}
