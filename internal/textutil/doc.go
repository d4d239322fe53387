// Package textutil matches free-form movie names against the titles on a page.
//
// Titles are reduced to term-frequency fingerprints (lowercased letter and
// digit runs), weighted by how rare each term is among the candidates, and
// compared with cosine similarity. Closest uses this to offer a "did you mean"
// hint when a name does not match any row exactly.
package textutil
