package classifier

import (
	"math"
	"sort"

	"jan-server/services/report-api/internal/domain/report"
)

// Vectorizer is a TF-IDF model over word unigrams and bigrams.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

type feature struct {
	index int
	value float64
}

// terms returns the unigram and bigram terms of text after stop word removal.
func terms(text string) []string {
	words := make([]string, 0, 8)
	for _, tok := range report.Tokens(text) {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		words = append(words, tok)
	}
	out := make([]string, 0, len(words)*2)
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// FitVectorizer learns the vocabulary and smoothed idf weights of a corpus.
func FitVectorizer(texts []string) *Vectorizer {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, t := range terms(text) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	vocab := make([]string, 0, len(df))
	for t := range df {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(vocab)),
		IDF:        make([]float64, len(vocab)),
	}
	n := float64(len(texts))
	for i, t := range vocab {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Size is the feature dimension.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}

// transform returns the L2-normalized sparse tf-idf vector of text.
func (v *Vectorizer) transform(text string) []feature {
	counts := make(map[int]float64)
	for _, t := range terms(text) {
		if idx, ok := v.Vocabulary[t]; ok {
			counts[idx]++
		}
	}
	out := make([]feature, 0, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * v.IDF[idx]
		norm += w * w
		out = append(out, feature{index: idx, value: w})
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range out {
			out[i].value /= norm
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}
