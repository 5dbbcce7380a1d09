package entity

// Niveles administrativos, del más general al más específico.
const (
	LevelProvince     = "province"
	LevelCity         = "ville" // ville o territoire
	LevelTerritory    = "territoire"
	LevelCommune      = "commune"
	LevelNeighborhood = "quartier"
)

// Categorías tarifarias por ubicación.
const (
	CategoryUrbaine      = "URBAINE"
	CategoryUrbanoRurale = "URBANO_RURALE"
	CategoryRurale       = "RURALE"
)

// GeographyNode nodo del árbol geográfico (province → ville/territoire → commune → quartier).
// Solo algunos nodos llevan Category; los demás heredan la del ancestro más cercano que la tenga.
type GeographyNode struct {
	ID       string
	Name     string
	Level    string  // ver constantes Level*
	ParentID *string // nil = raíz
	Category *string // nil = difiere al ancestro
	IsActive bool
}

// LevelRank posición del nivel en la jerarquía (0 = provincia). -1 si el nivel es desconocido.
func LevelRank(level string) int {
	switch level {
	case LevelProvince:
		return 0
	case LevelCity, LevelTerritory:
		return 1
	case LevelCommune:
		return 2
	case LevelNeighborhood:
		return 3
	default:
		return -1
	}
}

// IsValidCategory indica si la categoría tarifaria es conocida.
func IsValidCategory(c string) bool {
	switch c {
	case CategoryUrbaine, CategoryUrbanoRurale, CategoryRurale:
		return true
	}
	return false
}
