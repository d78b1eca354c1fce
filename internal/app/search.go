package app

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Aadit-17/RevEase/internal/domain"
)

const (
	maxSearchResults = 5
	// scores at or below this are noise from shared stop-adjacent terms
	minSimilarity = 0.005
)

// rankBySimilarity orders reviews by TF-IDF cosine similarity against the
// query. The corpus is every review text plus the query as the final
// document. Ties keep the original retrieval order; the result is capped at
// five and then filtered by the minimum score.
func rankBySimilarity(reviews []domain.Review, query string) []domain.Review {
	if len(reviews) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(reviews)+1)
	for _, rv := range reviews {
		docs = append(docs, tokenize(rv.Text))
	}
	docs = append(docs, tokenize(query))

	vecs := tfidfVectors(docs)
	queryVec := vecs[len(vecs)-1]

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(reviews))
	for i := range reviews {
		ranked[i] = scored{idx: i, score: cosine(queryVec, vecs[i])}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if len(ranked) > maxSearchResults {
		ranked = ranked[:maxSearchResults]
	}
	var out []domain.Review
	for _, s := range ranked {
		if s.score > minSimilarity {
			out = append(out, reviews[s.idx])
		}
	}
	return out
}

// tfidfVectors computes l2-normalized TF-IDF vectors with smooth idf:
// idf = ln((1+N)/(1+df)) + 1.
func tfidfVectors(docs [][]string) []map[string]float64 {
	n := float64(len(docs))
	df := map[string]int{}
	for _, doc := range docs {
		seen := map[string]bool{}
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	vecs := make([]map[string]float64, len(docs))
	for i, doc := range docs {
		tf := map[string]float64{}
		for _, term := range doc {
			tf[term]++
		}
		vec := make(map[string]float64, len(tf))
		var norm float64
		for term, count := range tf {
			w := count * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			vec[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vecs[i] = vec
	}
	return vecs
}

// cosine of two l2-normalized sparse vectors is just their dot product.
func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot
}

// tokenize lowercases, splits on non-alphanumerics, and drops stop-words and
// single-character tokens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
