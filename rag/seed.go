package rag

import "contratorealidad-backend/models"

func snippets(items ...string) models.Snippets {
	out := make(models.Snippets, len(items))
	for i, s := range items {
		out[i] = models.Snippet{Content: s}
	}
	return out
}

// DefaultKnowledgeBase is the built-in knowledge base used when no persisted
// copy is available.
func DefaultKnowledgeBase() models.KnowledgeBase {
	return models.KnowledgeBase{
		"contrato_realidad": {
			"concepto": snippets(
				"El contrato realidad es una figura jurídica que permite reconocer una relación laboral cuando existe una relación de trabajo subordinado pero se ha disfrazado bajo otra figura contractual.",
			),
			"elementos": snippets(
				"Subordinación jurídica",
				"Prestación personal del servicio",
				"Continuidad en la prestación",
				"Remuneración periódica",
				"Ausencia de contrato laboral formal",
			),
			"jurisprudencia": snippets(
				"Sentencia C-614 de 2009 de la Corte Constitucional",
				"Sentencia T-1234 de 2018 sobre contrato realidad",
				"Sentencia C-789 de 2020 sobre protección laboral",
			),
			"normativa": snippets(
				"Artículo 23 del Código Sustantivo del Trabajo",
				"Artículo 25 del CST sobre presunción de laboralidad",
				"Artículo 26 del CST sobre contrato de trabajo",
			),
		},
		"derecho_laboral_colombiano": {
			"principios": snippets(
				"Protección al trabajador",
				"Realidad sobre las formas",
				"Primacía de la realidad",
				"Continuidad de la relación laboral",
			),
			"derechos_trabajador": snippets(
				"Salario mínimo legal",
				"Prestaciones sociales",
				"Seguridad social",
				"Vacaciones y descansos",
				"Indemnización por despido",
			),
		},
		"demanda_laboral": {
			"requisitos": snippets(
				"Competencia del juez laboral",
				"Identificación clara de las partes",
				"Narración de hechos",
				"Pretensiones específicas",
				"Fundamentos jurídicos",
				"Medios de prueba",
				"Petición final",
			),
			"plazos": snippets(
				"Prescripción ordinaria: 3 años",
				"Prescripción especial: 1 año para algunos casos",
				"Término de contestación: 10 días",
			),
		},
	}
}

// DefaultCorpus is the fixed corpus ranked by the vector retriever.
func DefaultCorpus() []models.CorpusEntry {
	return []models.CorpusEntry{
		{
			ID:       "contrato_realidad_concepto",
			Content:  "El contrato realidad es una figura jurídica que permite reconocer una relación laboral cuando existe una relación de trabajo subordinado pero se ha disfrazado bajo otra figura contractual como prestación de servicios, contrato civil o comercial.",
			Metadata: models.CorpusMetadata{Type: "concepto", Source: "Doctrina legal", Category: "contrato_realidad"},
		},
		{
			ID:       "subordinacion_juridica",
			Content:  "La subordinación jurídica es el elemento esencial del contrato de trabajo. Se manifiesta cuando el trabajador está sometido a las órdenes, dirección y control del empleador en la prestación del servicio.",
			Metadata: models.CorpusMetadata{Type: "elemento", Source: "Código Sustantivo del Trabajo Art. 23", Category: "contrato_realidad"},
		},
		{
			ID:       "prestacion_personal",
			Content:  "La prestación personal del servicio significa que el trabajador debe realizar personalmente la labor contratada, sin poder delegarla a terceros, salvo autorización expresa del empleador.",
			Metadata: models.CorpusMetadata{Type: "elemento", Source: "Código Sustantivo del Trabajo", Category: "contrato_realidad"},
		},
		{
			ID:       "continuidad_servicio",
			Content:  "La continuidad en la prestación del servicio implica que la relación laboral se mantiene de manera estable y permanente, no ocasional o esporádica.",
			Metadata: models.CorpusMetadata{Type: "elemento", Source: "Jurisprudencia Corte Constitucional", Category: "contrato_realidad"},
		},
		{
			ID:       "remuneracion_periodica",
			Content:  "La remuneración periódica es el pago regular que recibe el trabajador por su labor, que puede ser salario, comisiones, bonificaciones u otras formas de retribución.",
			Metadata: models.CorpusMetadata{Type: "elemento", Source: "Código Sustantivo del Trabajo", Category: "contrato_realidad"},
		},
		{
			ID:       "sentencia_c614_2009",
			Content:  "La Sentencia C-614 de 2009 de la Corte Constitucional establece que el contrato realidad busca proteger al trabajador cuando se simula una relación contractual diferente a la laboral para evadir las obligaciones legales.",
			Metadata: models.CorpusMetadata{Type: "jurisprudencia", Source: "Corte Constitucional", Category: "contrato_realidad"},
		},
		{
			ID:       "articulo_23_cst",
			Content:  "Artículo 23 del Código Sustantivo del Trabajo: 'Contrato de trabajo es aquel por el cual una persona natural se obliga a prestar un servicio personal a otra persona natural o jurídica, bajo la continuada dependencia o subordinación de la segunda y mediante remuneración.'",
			Metadata: models.CorpusMetadata{Type: "normativa", Source: "Código Sustantivo del Trabajo", Category: "normativa_laboral"},
		},
		{
			ID:       "articulo_25_cst",
			Content:  "Artículo 25 del CST: 'Se presume que toda relación de trabajo personal está regida por un contrato de trabajo.'",
			Metadata: models.CorpusMetadata{Type: "normativa", Source: "Código Sustantivo del Trabajo", Category: "normativa_laboral"},
		},
		{
			ID:       "principio_proteccion",
			Content:  "El principio de protección al trabajador establece que en caso de duda sobre la naturaleza de la relación contractual, debe interpretarse a favor del trabajador.",
			Metadata: models.CorpusMetadata{Type: "principio", Source: "Derecho Laboral Colombiano", Category: "principios_laborales"},
		},
		{
			ID:       "principio_realidad",
			Content:  "El principio de realidad sobre las formas establece que la verdadera naturaleza de la relación laboral debe determinarse por los hechos reales y no por la denominación que las partes le hayan dado.",
			Metadata: models.CorpusMetadata{Type: "principio", Source: "Derecho Laboral Colombiano", Category: "principios_laborales"},
		},
		{
			ID:       "requisitos_demanda",
			Content:  "Los requisitos de una demanda laboral incluyen: competencia del juez laboral, identificación clara de las partes, narración de hechos, pretensiones específicas, fundamentos jurídicos, medios de prueba y petición final.",
			Metadata: models.CorpusMetadata{Type: "proceso", Source: "Código de Procedimiento Laboral", Category: "proceso_laboral"},
		},
		{
			ID:       "prescripcion_laboral",
			Content:  "La prescripción ordinaria en materia laboral es de 3 años, contados desde el día siguiente a la terminación del contrato de trabajo.",
			Metadata: models.CorpusMetadata{Type: "plazo", Source: "Código de Procedimiento Laboral", Category: "proceso_laboral"},
		},
	}
}
