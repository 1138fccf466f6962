package api

// StationWithDistance associates a GasStation with a computed distance in meters.
type StationWithDistance struct {
	Station  *GasStation
	Distance float64
}

// GasStationList is the envelope returned by both price endpoints.
type GasStationList struct {
	Fecha             string       `json:"Fecha"`
	ListaEESSPrecio   []GasStation `json:"ListaEESSPrecio"`
	Nota              string       `json:"Nota"`
	ResultadoConsulta string       `json:"ResultadoConsulta"`
}

// GasStation is a single fuel station as published upstream. Every value is a
// string, including coordinates ("40,4168") and prices ("1,659" or "" when the
// fuel is not sold).
type GasStation struct {
	IDEESS    string `json:"IDEESS"`
	Rotulo    string `json:"Rótulo"`
	Direccion string `json:"Dirección"`
	Localidad string `json:"Localidad"`
	Municipio string `json:"Municipio"`
	Provincia string `json:"Provincia"`
	CP        string `json:"C.P."`
	Latitud   string `json:"Latitud"`
	Longitud  string `json:"Longitud (WGS84)"`
	Horario   string `json:"Horario"`
	Margen    string `json:"Margen"`
	Remision  string `json:"Remisión"`
	TipoVenta string `json:"Tipo Venta"`

	PrecioGasolina95E5      string `json:"Precio Gasolina 95 E5"`
	PrecioGasoleoA          string `json:"Precio Gasoleo A"`
	PrecioBiodiesel         string `json:"Precio Biodiesel"`
	PrecioBioetanol         string `json:"Precio Bioetanol"`
	PrecioGasNaturalComp    string `json:"Precio Gas Natural Comprimido"`
	PrecioGasNaturalLicuado string `json:"Precio Gas Natural Licuado"`
	PrecioGasesLicuados     string `json:"Precio Gases licuados del petróleo"`
	PrecioGasoleoB          string `json:"Precio Gasoleo B"`
	PrecioGasoleoPremium    string `json:"Precio Gasoleo Premium"`
	PrecioGasolina95E10     string `json:"Precio Gasolina 95 E10"`
	PrecioGasolina95E5Prem  string `json:"Precio Gasolina 95 E5 Premium"`
	PrecioGasolina98E10     string `json:"Precio Gasolina 98 E10"`
	PrecioGasolina98E5      string `json:"Precio Gasolina 98 E5"`
	PrecioHidrogeno         string `json:"Precio Hidrogeno"`
	PorcentajeBioEtanol     string `json:"% BioEtanol"`
	PorcentajeEsterMetilico string `json:"% Éster metílico"`

	IDMunicipio string `json:"IDMunicipio"`
	IDProvincia string `json:"IDProvincia"`
	IDCCAA      string `json:"IDCCAA"`
}
