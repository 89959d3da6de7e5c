package domain

// DefaultConcept is one entry of the fallback configuration served while the
// catalog is still empty.
type DefaultConcept struct {
	Key    string
	Label  string
	Amount float64
}

// DefaultConcepts match the building's historic line items, in USD.
var DefaultConcepts = []DefaultConcept{
	{"jardinFrente", "Front garden", 15.0},
	{"jardinGeneral", "General garden", 20.0},
	{"recojoBasura", "Garbage collection", 25.0},
	{"limpieza", "Cleaning", 30.0},
	{"luzGradas", "Stairway lighting", 10.0},
	{"cera", "Floor wax", 5.0},
	{"ace", "Detergent", 8.0},
	{"lavanderia", "Laundry", 12.0},
	{"ahorroAdministracion", "Administration fund", 20.0},
	{"agua", "Water", 35.0},
}

// DefaultConfiguration builds the fallback configuration from DefaultConcepts.
func DefaultConfiguration() Configuration {
	concepts := make(map[string]float64, len(DefaultConcepts))
	total := 0.0
	for _, c := range DefaultConcepts {
		concepts[c.Key] = c.Amount
		total += c.Amount
	}
	return Configuration{Concepts: concepts, Total: total}
}
