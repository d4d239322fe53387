package textutil

// DefaultMinScore is the similarity Closest requires before suggesting a title.
const DefaultMinScore = 0.5

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Closest returns the candidate most similar to query and its score. ok is
// false when no candidate reaches minScore. Earlier candidates win ties.
func Closest(query string, candidates []string, minScore float64) (best string, score float64, ok bool) {
	target := NewFingerprint(query)
	if target == nil || len(candidates) == 0 {
		return "", 0, false
	}

	corpus := NewCorpus()
	prints := make([]*Fingerprint, len(candidates))
	for i, candidate := range candidates {
		prints[i] = NewFingerprint(candidate)
		corpus.Add(prints[i])
	}
	idf := corpus.IDF()
	target = target.WithIDF(idf)

	for i, fp := range prints {
		s := CosineSimilarity(target, fp.WithIDF(idf))
		if s > score {
			best, score = candidates[i], s
		}
	}
	if score < minScore {
		return "", score, false
	}
	return best, score, true
}
