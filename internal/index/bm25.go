package index

import "math"

// BM25 free parameters. Fixed for every engine instance so identical corpora
// always produce identical scores.
const (
	bm25K1 = 1.2  // term frequency saturation
	bm25B  = 0.75 // document length normalization strength
)

// idf returns the inverse document frequency for a term appearing in docFreq
// of totalDocs documents: ln(1 + (N - df + 0.5) / (df + 0.5)). Unlike the
// plain ln(N/df) form this stays positive when every document contains the
// term, so a corpus of one document still scores its own tokens.
func idf(totalDocs, docFreq int) float64 {
	if totalDocs == 0 || docFreq == 0 {
		return 0
	}
	n := float64(totalDocs)
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// bm25TF returns the saturated, length-normalized term-frequency component:
// tf*(k1+1) / (tf + k1*(1 - b + b*fieldLen/avgFieldLen)).
func bm25TF(termFreq, fieldLen, avgFieldLen float64) float64 {
	if termFreq == 0 {
		return 0
	}
	norm := 1.0
	if avgFieldLen > 0 {
		norm = 1 - bm25B + bm25B*(fieldLen/avgFieldLen)
	}
	return termFreq * (bm25K1 + 1) / (termFreq + bm25K1*norm)
}
