package metrics

// Richness counts species above the threshold at the latest checkpoint.
type Richness struct {
	threshold float64
	last      int
}

func NewRichness(threshold float64) *Richness {
	return &Richness{threshold: threshold}
}

func (r *Richness) Name() string { return "richness" }

func (r *Richness) Observe(b []float64, _ float64) {
	r.last = 0
	for _, v := range b {
		if v > r.threshold {
			r.last++
		}
	}
}

func (r *Richness) Value() float64 { return float64(r.last) }

func (r *Richness) Reset() { r.last = 0 }

// MeanBiomass averages total biomass over all checkpoints.
type MeanBiomass struct {
	total   float64
	samples int
}

func NewMeanBiomass() *MeanBiomass { return &MeanBiomass{} }

func (m *MeanBiomass) Name() string { return "mean_biomass" }

func (m *MeanBiomass) Observe(b []float64, _ float64) {
	for _, v := range b {
		m.total += v
	}
	m.samples++
}

func (m *MeanBiomass) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanBiomass) Reset() {
	m.total = 0
	m.samples = 0
}

// MinBiomass tracks the smallest positive biomass seen, a rough distance
// from the next extinction.
type MinBiomass struct {
	min float64
}

func NewMinBiomass() *MinBiomass { return &MinBiomass{} }

func (m *MinBiomass) Name() string { return "min_biomass" }

func (m *MinBiomass) Observe(b []float64, _ float64) {
	for _, v := range b {
		if v > 0 && (m.min == 0 || v < m.min) {
			m.min = v
		}
	}
}

func (m *MinBiomass) Value() float64 { return m.min }

func (m *MinBiomass) Reset() { m.min = 0 }
