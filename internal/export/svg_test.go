package export

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/befsim/internal/viz"
)

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err != nil {
			require.Equal(t, "EOF", err.Error())
			return
		}
	}
}

func TestBiomassSVG(t *testing.T) {
	times := []float64{0, 1, 2}
	biomass := [][]float64{{1, 0.5}, {0.8, 0.6}, {0.7, 0}}

	var buf bytes.Buffer
	require.NoError(t, BiomassSVG(&buf, times, biomass, DefaultSVGOptions()))
	out := buf.String()
	wellFormed(t, buf.Bytes())
	assert.Equal(t, 2, strings.Count(out, "<path "))
	assert.Contains(t, out, `id="s1"`)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
}

func TestBiomassSVGLogBreaksLine(t *testing.T) {
	times := []float64{0, 1, 2}
	biomass := [][]float64{{1}, {0}, {1}}

	opts := DefaultSVGOptions()
	opts.Log = true
	var buf bytes.Buffer
	require.NoError(t, BiomassSVG(&buf, times, biomass, opts))
	assert.Equal(t, 2, strings.Count(buf.String(), "M"))
}

func TestBiomassSVGErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, BiomassSVG(&buf, []float64{0}, [][]float64{{1}}, DefaultSVGOptions()))
	assert.Error(t, BiomassSVG(&buf, []float64{0, 1}, [][]float64{{1}}, DefaultSVGOptions()))

	opts := DefaultSVGOptions()
	opts.Log = true
	assert.Error(t, BiomassSVG(&buf, []float64{0, 1}, [][]float64{{0}, {0}}, opts))
}

func TestCanvasSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	var buf bytes.Buffer
	require.NoError(t, CanvasSVG(&buf, c, 4))
	wellFormed(t, buf.Bytes())
	assert.Equal(t, 2, strings.Count(buf.String(), "<circle"))
	assert.Contains(t, buf.String(), `width="16" height="16"`)
}
