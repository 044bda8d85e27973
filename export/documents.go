package export

import (
	"time"

	"contratorealidad-backend/models"
)

// DateLayout is dd/mm/yyyy HH:MM
const DateLayout = "02/01/2006 15:04"

// Lawsuit renders the drafted lawsuit in section order
func Lawsuit(lawyerName string, sections models.Sections) ([]byte, error) {
	d := newDocument("Demanda por Contrato Realidad")
	d.heading(1, "Demanda por Contrato Realidad")
	d.paragraph("Abogado supervisor: " + lawyerName)
	d.paragraph("")

	for _, s := range sections {
		d.heading(2, s.Title)
		d.blocks(s.Content)
		d.paragraph("")
	}
	return d.bytes(time.Now())
}

// ViabilityOpinion renders the legal viability opinion
func ViabilityOpinion(opinion string, issuedAt time.Time) ([]byte, error) {
	d := newDocument("Concepto Jurídico de Viabilidad")
	d.heading(1, "Concepto Jurídico de Viabilidad")
	d.paragraph("Fecha de emisión: " + issuedAt.Format(DateLayout))
	d.heading(2, "Concepto Jurídico")
	d.blocks(opinion)
	return d.bytes(issuedAt)
}

// PowerOfAttorney renders one paragraph per blank-line separated block of text
func PowerOfAttorney(text string) ([]byte, error) {
	d := newDocument("Poder Especial")
	d.blocks(text)
	return d.bytes(time.Now())
}

// Transcription renders an interview transcript with its file details
func Transcription(text, filename string, transcribedAt time.Time, model string) ([]byte, error) {
	d := newDocument("Transcripción de Entrevista")
	d.heading(1, "Transcripción de Entrevista")
	d.heading(2, "Información del Archivo")
	d.paragraph("Archivo original: " + filename)
	d.paragraph("Fecha de transcripción: " + transcribedAt.Format(DateLayout))
	d.paragraph("Modelo utilizado: " + model)
	d.paragraph("")
	d.heading(2, "Transcripción")
	d.blocks(text)
	return d.bytes(transcribedAt)
}
