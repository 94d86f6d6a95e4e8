package classifier

import "jan-server/services/report-api/internal/domain/report"

var rawStopWords = []string{
	"a", "acá", "ahí", "al", "algo", "algún", "alguna", "algunas", "alguno", "algunos", "allá", "alli", "allí",
	"ante", "antes", "aquel", "aquella", "aquellas", "aquello", "aquellos", "aquí", "arriba", "así", "aun", "aún",
	"bajo", "bastante", "bien", "cada", "casi", "como", "con", "contra", "cual", "cuales", "cualquier", "cualquiera",
	"cualquieras", "cuan", "cuando", "cuanta", "cuantas", "cuanto", "cuantos", "de", "del", "demasiado", "dentro",
	"desde", "donde", "dos", "el", "él", "ella", "ellas", "ello", "ellos", "en", "encima", "entonces", "entre", "era",
	"eran", "eres", "es", "esa", "esas", "ese", "eso", "esos", "esta", "está", "están", "estaba", "estaban", "estado",
	"estados", "estar", "estas", "este", "esto", "estos", "estoy", "fin", "fue", "fueron", "gran", "grandes", "ha",
	"haber", "había", "habían", "han", "hasta", "hay", "incluso", "la", "las", "le", "les", "lo", "los", "luego", "más",
	"me", "mi", "mientras", "mis", "misma", "mismas", "mismo", "mismos", "mucho", "muchos", "muy", "nada", "ni", "ningun",
	"ninguna", "ningunas", "ninguno", "ningunos", "no", "nos", "nosotras", "nosotros", "nuestra", "nuestras", "nuestro",
	"nuestros", "nunca", "o", "os", "otra", "otras", "otro", "otros", "para", "pero", "poca", "pocas", "poco", "pocos",
	"por", "porque", "primero", "puede", "pueden", "pues", "que", "qué", "quien", "quién", "quienes", "se", "sea", "sean",
	"según", "ser", "si", "sí", "sido", "siempre", "sin", "sino", "sobre", "sois", "sola", "solas", "solo", "sólo", "somos",
	"son", "soy", "su", "sus", "tal", "también", "tampoco", "tan", "tanta", "tantas", "tanto", "te", "tenemos", "tener",
	"tengo", "ti", "tiempo", "tiene", "tienen", "toda", "todas", "todavía", "todo", "todos", "tu", "tus", "un", "una",
	"unas", "uno", "unos", "usted", "ustedes", "va", "vamos", "van", "varias", "varios", "veces", "ver", "y", "ya",
}

// stopWords holds the accent-folded Spanish stop list.
var stopWords = func() map[string]struct{} {
	out := make(map[string]struct{}, len(rawStopWords))
	for _, w := range rawStopWords {
		out[report.Normalize(w)] = struct{}{}
	}
	return out
}()
