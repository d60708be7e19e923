package snow

// Snow-removal state codes as published by the city's InfoNeige feed.
const (
	EtatEnneige    = 0  // snow on the ground, not yet planned
	EtatDeneige    = 1  // cleared
	EtatPlanifie   = 2  // planned
	EtatReplanifie = 3  // re-planned
	EtatReporte    = 4  // will be re-planned later
	EtatChargement = 5  // loading in progress
	EtatDegage     = 10 // clear between two loading passes
)

// unknown-code fallbacks
const (
	defaultColor  = "#6b7280"
	defaultStatus = "Status inconnu"
)

var statusColors = map[int]string{
	EtatEnneige:    "#ff9671",
	EtatDeneige:    "#22c55e",
	EtatPlanifie:   "#3b82f6",
	EtatReplanifie: "#8b5cf6",
	EtatReporte:    "#f9f871",
	EtatChargement: "#ef4444",
	EtatDegage:     defaultColor,
}

var statusLabels = map[int]string{
	EtatDeneige:    "Déneigé",
	EtatPlanifie:   "Planifié",
	EtatReplanifie: "Replanifié",
	EtatReporte:    "Sera replanifié ultérieurement",
	EtatChargement: "Chargement en cours",
	EtatDegage:     "Dégagé (entre 2 chargements de neige)",
}

// ColorFor maps a snow-removal state code to its display color. Unknown
// codes map to a neutral gray; the function is total.
func ColorFor(etat int) string {
	if c, ok := statusColors[etat]; ok {
		return c
	}
	return defaultColor
}

// LabelFor maps a snow-removal state code to a human status phrase.
// Unknown codes map to a defined fallback; the function is total.
func LabelFor(etat int) string {
	if s, ok := statusLabels[etat]; ok {
		return s
	}
	return defaultStatus
}
