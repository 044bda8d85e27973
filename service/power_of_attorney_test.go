package service

import (
	"strings"
	"testing"

	"contratorealidad-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPowerOfAttorneyDefaults(t *testing.T) {
	text := RenderPowerOfAttorney(nil)

	assert.NotContains(t, text, "{", "every placeholder is substituted")
	assert.True(t, strings.HasPrefix(text, "Señores JUEZ ADMINISTRATIVO DEL CIRCUITO (reparto) E.S.D."))
	assert.Equal(t, 4, strings.Count(text, "Jefe de Enfermería"))
	assert.Contains(t, text, "articulo 77 del Código General del Proceso.")

	paragraphs := strings.Split(text, "\n\n")
	require.Len(t, paragraphs, 7)
	assert.Equal(t, "Respetuosamente,", paragraphs[3])
	assert.Equal(t, "Acepto,", paragraphs[5])
	assert.True(t, strings.HasSuffix(paragraphs[6], "T.P. No 000.000 del C. S. de la J."))
}

func TestRenderPowerOfAttorneyFields(t *testing.T) {
	text := RenderPowerOfAttorney(models.PowerOfAttorneyFields{
		"nombre_poderdante": "ANA RUIZ",
		"cargo_laboral":     "Auxiliar de Enfermería",
		"ciudad_poderdante": "   ",
		"no_existe":         "ignorado",
	})

	assert.True(t, strings.HasPrefix(strings.Split(text, "\n\n")[1], "ANA RUIZ, identificada"))
	assert.Contains(t, text, "ANA RUIZ C.C. 00.000.000 de Bogotá D.C")
	assert.Equal(t, 4, strings.Count(text, "Auxiliar de Enfermería"))
	assert.Contains(t, text, "número 00.000.000 de Bogotá,", "blank field falls back to default")
	assert.NotContains(t, text, "ignorado")
}

func TestMergePowerOfAttorneyFields(t *testing.T) {
	merged, err := MergePowerOfAttorneyFields(
		models.PowerOfAttorneyFields{"libro": "IX"},
		models.PowerOfAttorneyFields{"numero_libro": " 123 "},
	)
	require.NoError(t, err)
	assert.Equal(t, models.PowerOfAttorneyFields{"libro": "IX", "numero_libro": "123"}, merged)

	_, err = MergePowerOfAttorneyFields(nil, models.PowerOfAttorneyFields{"firma": "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fields.firma", verr.Field)
}
