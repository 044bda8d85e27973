package prompt

const (
	summarySystem   = "Actúas como un abogado litigante experto en derecho laboral colombiano."
	viabilitySystem = "Eres un abogado litigante con experiencia en demandas laborales por contrato realidad. Redactas conceptos técnicos, argumentativos y estructurados."
	sectionSystem   = "Actúas como abogado litigante experto en demandas laborales por contrato realidad."
	referenceSystem = "Actúas como abogado litigante experto en demandas laborales por contrato realidad. Redactas secciones siguiendo patrones de referencia cuando están disponibles."
	patternsSystem  = "Eres un experto en análisis de documentos legales colombianos. Extraes patrones de redacción de manera precisa y estructurada. Siempre respondes en formato JSON válido."

	// appended to the system instruction when retrieved documents are used
	citeSourcesSuffix = " Fundamenta tus respuestas citando fuentes legales cuando sea apropiado."
)

const summaryTemplate = `
Eres un abogado especializado en derecho laboral colombiano. A partir de los siguientes hechos narrados por un trabajador, redacta un resumen jurídico claro, técnico y estructurado, útil para evaluar la viabilidad de una demanda por contrato realidad.

HECHOS:
%s

Resumen técnico (evita repetir hechos, prioriza elementos como subordinación, prestación personal del servicio, continuidad y ausencia de vínculo formal):
`

const viabilityTemplate = `
Eres un abogado especializado en derecho laboral colombiano.

A continuación se presentan los hechos de un trabajador que considera haber tenido una relación laboral encubierta bajo un contrato de prestación de servicios u otra figura no laboral. Evalúa si existe una **relación laboral real (contrato realidad)** y emite un concepto técnico, claro y fundamentado sobre la **viabilidad jurídica** de presentar una demanda.

HECHOS DEL CASO:
%s

Evalúa:

- Si hubo subordinación (órdenes, control, supervisión directa).
- Si prestó el servicio de forma personal y continua.
- Si recibió remuneración periódica.
- Si hubo ausencia de contrato laboral escrito o uso de figuras contractuales simuladas.
- Aplica doctrina y jurisprudencia laboral colombiana reciente.

Concluye si hay **viabilidad alta, media o baja** para presentar demanda, con argumentos técnicos.
`

// sectionHeader takes title, facts, summary and opinion
const sectionHeader = `
Eres un abogado litigante colombiano experto en derecho laboral. Redacta SOLO la sección "%s" de una demanda laboral por contrato realidad.

HECHOS DEL CASO:
%s

RESUMEN TÉCNICO:
%s

CONCEPTO DE VIABILIDAD:
%s
`

const sectionClosing = "\nRedacta la sección %s de forma clara, estructurada y jurídica, lista para usarse en la demanda.\n"

const feedbackBlock = "\nCOMENTARIOS ADICIONALES DEL USUARIO:\n%s\n"

const referencePatternBlock = `
PATRÓN DE REFERENCIA PARA ESTA SECCIÓN:
- Estructura: %s
- Estilo: %s
- Elementos típicos: %s
- Fórmulas legales: %s
- Ejemplo: %s
`

const sectionGuideBlock = `
GUÍA PARA ESTA SECCIÓN:
- Descripción: %s
- Contenido típico: %s
`

const referenceInstructions = `
INSTRUCCIONES:
- Sigue la estructura y estilo del patrón de referencia si está disponible
- Usa las fórmulas legales apropiadas
- Incluye todos los elementos típicos de esta sección
- Mantén un tono profesional y jurídico
- Redacta de forma clara, estructurada y lista para usarse en la demanda
- Si no hay patrón de referencia, usa las mejores prácticas legales colombianas
`

const patternsTemplate = `
Eres un experto en análisis de documentos legales colombianos. Analiza el siguiente documento de referencia de una demanda laboral y extrae para cada una de las siguientes secciones:

%s
DOCUMENTO DE REFERENCIA:
%s

Para cada sección que encuentres en el documento, identifica y extrae:
- La estructura y formato de redacción (cómo está organizada)
- El estilo y tono utilizado (formal, técnico, etc.)
- Los elementos que típicamente incluye (qué información contiene)
- Frases o fórmulas legales recurrentes (expresiones comunes)
- Un extracto representativo del documento (ejemplo real de la sección)

Responde ÚNICAMENTE en formato JSON válido con la siguiente estructura:
{
    "I. Hechos": {
        "estructura": "descripción detallada de cómo está estructurada esta sección",
        "estilo": "descripción del estilo de redacción utilizado",
        "elementos": ["elemento1 que incluye", "elemento2 que incluye", "elemento3"],
        "formulas_legales": ["fórmula legal 1", "fórmula legal 2", "fórmula legal 3"],
        "ejemplo_extracto": "extracto real del documento que muestra cómo está redactada"
    },
    "II. Peticiones": {
        ...
    },
    ...
}

IMPORTANTE:
- Solo incluye las secciones que realmente encuentres en el documento
- Si una sección no está en el documento, no la incluyas en el JSON
- Los extractos deben ser reales del documento, no inventados
- El JSON debe ser válido y parseable
- Responde solo con el JSON, sin texto adicional antes o después
`

const retrievedHeader = "\n\nINFORMACIÓN LEGAL RELEVANTE:\n"

// RetrievedBlockHeading marks the retrieved documents block inside a prompt
const RetrievedBlockHeading = "INFORMACIÓN LEGAL RELEVANTE"

type sectionGuide struct {
	description string
	typical     string
}

// sectionGuides describe each standard section when no reference pattern exists
var sectionGuides = map[string]sectionGuide{
	"I. Hechos": {
		"Narración detallada y cronológica de los hechos que dan origen a la demanda",
		"Debe incluir: fechas, lugares, personas involucradas, acciones realizadas, documentos relevantes",
	},
	"II. Peticiones": {
		"Solicitudes específicas que se hacen al juez",
		"Debe incluir: peticiones principales y subsidiarias, de forma clara y numerada",
	},
	"III. Petición Final": {
		"Resumen final de lo que se solicita al tribunal",
		"Debe incluir: síntesis de todas las peticiones, forma de notificación",
	},
	"IV. Fundamentos de derecho": {
		"Bases legales que sustentan las peticiones",
		"Debe incluir: artículos de ley, principios jurídicos aplicables, argumentación legal",
	},
	"V. Normatividad y jurisprudencia aplicable al caso": {
		"Leyes, decretos, sentencias y jurisprudencia relevante",
		"Debe incluir: citas específicas de normas, sentencias de cortes, precedentes",
	},
	"VI. Relación de medios probatorios": {
		"Lista de pruebas que se aportan al proceso",
		"Debe incluir: documentos, testigos, peritos, inspecciones, etc.",
	},
	"VII. Cuantía": {
		"Valor económico de las pretensiones",
		"Debe incluir: cálculo detallado de montos, conceptos, intereses",
	},
	"VIII. Propuesta de fórmula de conciliación": {
		"Propuesta para resolver el conflicto mediante conciliación",
		"Debe incluir: términos de la propuesta, condiciones, plazos",
	},
	"IX. Competencia": {
		"Justificación de la competencia del juez o tribunal",
		"Debe incluir: fundamento legal de la competencia, territorio, materia",
	},
	"X. Manifestación": {
		"Declaraciones adicionales del demandante",
		"Debe incluir: reservas, aclaraciones, manifestaciones especiales",
	},
	"XI. Anexos": {
		"Lista de documentos que acompañan la demanda",
		"Debe incluir: numeración y descripción de cada anexo",
	},
	"XII. Notificaciones": {
		"Datos para notificaciones procesales",
		"Debe incluir: dirección, correo electrónico, teléfono, forma de notificación preferida",
	},
}
