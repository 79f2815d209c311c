// Package similarity scores documents against a query document with TF-IDF
// weighted cosine similarity.
package similarity

import (
	"maps"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// tokenPattern matches runs of at least two letters, digits or underscores.
// Feature texts join multi-word values with underscores, so each value stays
// whole; one-character values such as "c" or "r" are not tokens.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lower-cases text and splits it into word tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Vector is a sparse term-weight vector.
type Vector map[string]float64

// Terms returns the terms of v in sorted order. Sums over a vector walk this
// order so equal vectors always produce bit-identical results.
func (v Vector) Terms() []string {
	return slices.Sorted(maps.Keys(v))
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, term := range v.Terms() {
		w := v[term]
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Space is a TF-IDF vector space fitted on a corpus. Vectors[i] belongs to
// the i-th document of the corpus.
type Space struct {
	Vocabulary []string
	IDF        map[string]float64
	Vectors    []Vector
}

// Fit builds the vector space. Every token seen in the corpus becomes a
// dimension. Term weights are raw counts times the smoothed inverse document
// frequency ln((1+n)/(1+df))+1, and each document vector is L2-normalized.
func Fit(corpus []string) *Space {
	n := len(corpus)
	counts := make([]map[string]int, n)
	df := make(map[string]int)

	for i, doc := range corpus {
		tf := make(map[string]int)
		for _, token := range Tokenize(doc) {
			tf[token]++
		}
		for token := range tf {
			df[token]++
		}
		counts[i] = tf
	}

	space := &Space{
		Vocabulary: make([]string, 0, len(df)),
		IDF:        make(map[string]float64, len(df)),
		Vectors:    make([]Vector, n),
	}
	for token, freq := range df {
		space.Vocabulary = append(space.Vocabulary, token)
		space.IDF[token] = math.Log(float64(1+n)/float64(1+freq)) + 1
	}
	sort.Strings(space.Vocabulary)

	for i, tf := range counts {
		vec := make(Vector, len(tf))
		for token, count := range tf {
			vec[token] = float64(count) * space.IDF[token]
		}
		if norm := vec.Norm(); norm > 0 {
			for token := range vec {
				vec[token] /= norm
			}
		}
		space.Vectors[i] = vec
	}

	return space
}
