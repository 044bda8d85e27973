package service

import (
	"strings"

	"contratorealidad-backend/models"
)

const powerOfAttorneyTemplate = `Señores {juez_administrativo}

{nombre_poderdante}, identificada con la cédula de ciudadanía número {cedula_poderdante} de {ciudad_poderdante}, de forma atenta y respetuosa me permito manifestar a usted, que confiero poder especial, amplio y suficiente a la Organización Jurídica {nombre_organizacion}, con NIT No {nit_organizacion}, constituida por documento privado en junta de socios del {fecha_constitucion}, bajo el número {numero_libro} del libro {libro}, según consta en el certificado de existencia y representación legal del {certificado_existencia}, y cuyo representante legal es la Doctora {nombre_representante}, identificada con cedula de ciudadanía No. {cedula_representante} de {ciudad_representante} y tarjeta profesional No. {tarjeta_profesional} del {consejo_judicatura}, para que, en mi nombre y representación, presente medio de control de Nulidad y Restablecimiento del Derecho contra {entidad_demandada}, a fin de que de declare la nulidad de los efectos económicos de los oficios No. {oficio_1} de {fecha_oficio_1} expedido por el {jefe_regional} y el oficio {oficio_2} del {fecha_oficio_2}, expedido por la {directora_sanidad}, por medio del cual se niega el reconocimiento del vínculo laboral y pago de emolumentos salariales, prestacionales, indemnizatorios y de seguridad social a la suscrita y a título de restablecimiento del derecho se ordene la existencia del vínculo laboral entre dicha entidad y la suscrita, la cual tuvo vigencia entre {fecha_inicio_laboral} hasta el {fecha_fin_laboral}, tiempo durante el cual me desempeñé como {cargo_laboral} para esta entidad, como consecuencia de lo anterior se ordene cancelar la diferencia existente entre la suscrita como {cargo_laboral} y, un {cargo_laboral} de planta y/o uno uniformado de conformidad con lo que se pagaba desde el año 2011 hasta el año 2019 a dicho cargo de planta, así mismo se ordene el reconocimiento y pago de todos los emolumentos prestacionales, indemnizatorios y de seguridad social (en la proporción patronal) que se dejaron de cancelar durante toda la relación laboral, de conformidad con lo devengado por un {cargo_laboral} de planta y con lo que se pagaba desde el año 2011 y hasta el año 2019 a dicho cargo de planta, que se ordene la devolución de toda deducción existente durante la relación laboral, y se ordene y pague las indemnizaciones por la no consignación de cesantías al fondo de cesantías, sobre las sumas adeudadas se ordene la correspondiente indexación y el pago de los intereses moratorios y se condene en costas a la demandada.

El apoderado especial queda facultado para recibir, transigir, desistir, sustituir, reasumir, conciliar, renunciar; además, facultad expresa de cobrar y recibir el pago de los reconocimientos que así se pretenden, y en general todas las demás facultades necesarias para el cumplimiento de este mandato y conforme a lo establecido por el articulo 77 del Código General del Proceso.

Respetuosamente,

{nombre_poderdante} C.C. {cedula_poderdante} de {ciudad_poderdante_firma}

Acepto,

{nombre_representante}
Representante Legal {nombre_organizacion} C.C. {cedula_representante} de {ciudad_representante_firma} T.P. No {tarjeta_profesional} del C. S. de la J.`

// RenderPowerOfAttorney substitutes fields into the power-of-attorney template.
// Missing or blank fields take their default value. Unknown keys are ignored.
func RenderPowerOfAttorney(fields models.PowerOfAttorneyFields) string {
	pairs := make([]string, 0, 2*len(models.PowerOfAttorneyFieldDefs))
	for _, def := range models.PowerOfAttorneyFieldDefs {
		v := strings.TrimSpace(fields[def.Key])
		if v == "" {
			v = def.Default
		}
		pairs = append(pairs, "{"+def.Key+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(powerOfAttorneyTemplate)
}

// MergePowerOfAttorneyFields overlays known keys from update onto base.
// Keys outside the template are rejected.
func MergePowerOfAttorneyFields(base, update models.PowerOfAttorneyFields) (models.PowerOfAttorneyFields, error) {
	out := make(models.PowerOfAttorneyFields, len(base)+len(update))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range update {
		if !models.IsPowerOfAttorneyField(k) {
			return nil, validationError("fields."+k, "unknown power of attorney field")
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
