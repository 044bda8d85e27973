package models

import (
	"database/sql/driver"
	"encoding/json"
)

// PowerOfAttorneyField describes one substitutable field of the power-of-attorney template
type PowerOfAttorneyField struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Group   string `json:"group"`
	Default string `json:"default"`
}

// PowerOfAttorneyFieldDefs lists the template fields in form order.
var PowerOfAttorneyFieldDefs = []PowerOfAttorneyField{
	{Key: "nombre_poderdante", Label: "Nombre completo del poderdante", Group: "poderdante", Default: "NOMBRE COMPLETO DEL PODERDANTE"},
	{Key: "cedula_poderdante", Label: "Cédula del poderdante", Group: "poderdante", Default: "00.000.000"},
	{Key: "ciudad_poderdante", Label: "Ciudad del poderdante", Group: "poderdante", Default: "Bogotá"},
	{Key: "juez_administrativo", Label: "Juez Administrativo", Group: "poderdante", Default: "JUEZ ADMINISTRATIVO DEL CIRCUITO (reparto) E.S.D."},
	{Key: "ciudad_poderdante_firma", Label: "Ciudad para firma", Group: "poderdante", Default: "Bogotá D.C"},

	{Key: "nombre_organizacion", Label: "Nombre de la organización", Group: "organizacion", Default: "ORGANIZACIÓN JURÍDICA SAS"},
	{Key: "nit_organizacion", Label: "NIT de la organización", Group: "organizacion", Default: "000000000-0"},
	{Key: "fecha_constitucion", Label: "Fecha de constitución", Group: "organizacion", Default: "26 de marzo de 2014"},
	{Key: "numero_libro", Label: "Número del libro", Group: "organizacion", Default: "00007635"},
	{Key: "libro", Label: "Libro", Group: "organizacion", Default: "IX"},
	{Key: "certificado_existencia", Label: "Año del certificado", Group: "organizacion", Default: "2021"},

	{Key: "nombre_representante", Label: "Nombre del representante legal", Group: "representante", Default: "NOMBRE DEL REPRESENTANTE LEGAL"},
	{Key: "cedula_representante", Label: "Cédula del representante", Group: "representante", Default: "0.000.000.000"},
	{Key: "ciudad_representante", Label: "Ciudad del representante", Group: "representante", Default: "Neiva"},
	{Key: "tarjeta_profesional", Label: "Tarjeta profesional", Group: "representante", Default: "000.000"},
	{Key: "consejo_judicatura", Label: "Consejo de judicatura", Group: "representante", Default: "Consejo Superior de la Judicatura"},
	{Key: "ciudad_representante_firma", Label: "Ciudad para firma del representante", Group: "representante", Default: "Neiva"},

	{Key: "entidad_demandada", Label: "Entidad demandada", Group: "caso", Default: "LA NACIÓN – MINISTERIO DE DEFENSA -POLICIA NACIONAL – DIRECCIÓN DE SANIDAD"},
	{Key: "oficio_1", Label: "Número del oficio 1", Group: "caso", Default: "S-2020-465025-HEBOG/RASES-GRUCO 29.25"},
	{Key: "fecha_oficio_1", Label: "Fecha del oficio 1", Group: "caso", Default: "29 de diciembre de 2020"},
	{Key: "jefe_regional", Label: "Jefe regional", Group: "caso", Default: "Jefe Regional de Aseguramiento en Salud No. 1"},
	{Key: "oficio_2", Label: "Número del oficio 2", Group: "caso", Default: "S-2021-000811-DISAN ASJUR -41.10"},
	{Key: "fecha_oficio_2", Label: "Fecha del oficio 2", Group: "caso", Default: "07 de enero del 2021"},
	{Key: "directora_sanidad", Label: "Directora de sanidad", Group: "caso", Default: "Directora de Sanidad de la Policía Nacional"},

	{Key: "cargo_laboral", Label: "Cargo laboral", Group: "laboral", Default: "Jefe de Enfermería"},
	{Key: "fecha_inicio_laboral", Label: "Fecha de inicio", Group: "laboral", Default: "enero del 2011"},
	{Key: "fecha_fin_laboral", Label: "Fecha de fin", Group: "laboral", Default: "26 de septiembre de 2019"},
}

// PowerOfAttorneyFields maps a field key to its value
type PowerOfAttorneyFields map[string]string

// DefaultPowerOfAttorneyFields returns every field set to its sample default.
func DefaultPowerOfAttorneyFields() PowerOfAttorneyFields {
	out := make(PowerOfAttorneyFields, len(PowerOfAttorneyFieldDefs))
	for _, f := range PowerOfAttorneyFieldDefs {
		out[f.Key] = f.Default
	}
	return out
}

// IsPowerOfAttorneyField reports whether key names a template field
func IsPowerOfAttorneyField(key string) bool {
	for _, f := range PowerOfAttorneyFieldDefs {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for JSONB
func (f PowerOfAttorneyFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *PowerOfAttorneyFields) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*f = nil
		return nil
	}
	return json.Unmarshal(bytes, f)
}
