package similarity

// BaselineScorer is the plain sequence-alignment ratio, kept as a control
// when benchmarking the other methods.
type BaselineScorer struct{}

func NewBaseline() *BaselineScorer { return &BaselineScorer{} }

func (*BaselineScorer) Name() string { return Baseline.DisplayName() }

func (*BaselineScorer) Description() string {
	return "Character sequence alignment ratio (2*matches/total characters). " +
		"Simple control method used as a benchmark reference."
}

func (*BaselineScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	return clamp01(sequenceRatio(na, nb))
}
