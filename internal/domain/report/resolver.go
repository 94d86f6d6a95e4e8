package report

// DefaultFuzzyCutoff is the minimum TokenSetRatio score accepted as a match.
const DefaultFuzzyCutoff = 80

// SynonymEntry maps a canonical key to the phrases that denote it.
type SynonymEntry struct {
	Key      string
	Synonyms []string
}

// SynonymTable is an ordered lookup table; earlier entries win ties.
type SynonymTable []SynonymEntry

// Applied before fuzzy matching because edit distance scores them poorly.
var irregularPlurals = map[string]string{
	"meses":   "mes",
	"dias":    "dia",
	"anios":   "anio",
	"semanas": "semana",
}

// Resolver maps free-form tokens onto canonical registry keys.
type Resolver struct {
	cutoff int
}

func NewResolver(cutoff int) *Resolver {
	if cutoff <= 0 || cutoff > 100 {
		cutoff = DefaultFuzzyCutoff
	}
	return &Resolver{cutoff: cutoff}
}

// Resolve returns the key that best matches token along with its score.
// Exact matches on a key or synonym win outright; otherwise the highest
// fuzzy score at or above the cutoff is chosen, first registered on ties.
func (r *Resolver) Resolve(token string, table SynonymTable) (string, int, bool) {
	t := Normalize(token)
	if t == "" {
		return "", 0, false
	}
	if singular, ok := irregularPlurals[t]; ok {
		t = singular
	}

	for _, entry := range table {
		if entry.Key == t {
			return entry.Key, 100, true
		}
		for _, syn := range entry.Synonyms {
			if syn == t {
				return entry.Key, 100, true
			}
		}
	}

	bestKey, bestScore := "", -1
	for _, entry := range table {
		candidates := append([]string{entry.Key}, entry.Synonyms...)
		for _, cand := range candidates {
			if score := TokenSetRatio(t, cand); score > bestScore {
				bestKey, bestScore = entry.Key, score
			}
		}
	}
	if bestScore < r.cutoff {
		return "", bestScore, false
	}
	return bestKey, bestScore, true
}
