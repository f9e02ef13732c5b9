package foodweb

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/befsim/internal/dynamo"
)

var chain = Matrix{
	{0, 1, 0},
	{0, 0, 1},
	{0, 0, 0},
}

var omnivory = Matrix{
	{0, 1, 1},
	{0, 0, 1},
	{0, 0, 0},
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		m     Matrix
		valid bool
	}{
		{"chain", chain, true},
		{"single producer", Matrix{{0}}, true},
		{"empty", Matrix{}, false},
		{"not square", Matrix{{0, 1, 0}, {0, 0, 1}}, false},
		{"ragged", Matrix{{0, 1}, {0}}, false},
		{"non-binary", Matrix{{0, 2}, {0, 0}}, false},
		{"negative", Matrix{{0, -1}, {0, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.m)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, dynamo.ErrValidation)
		})
	}
}

func TestConnectanceAndProducers(t *testing.T) {
	assert.Equal(t, 3, Links(omnivory))
	assert.InDelta(t, 3.0/9.0, Connectance(omnivory), 1e-12)
	assert.Equal(t, []bool{false, false, true}, Producers(omnivory))
	assert.Equal(t, []int{1, 2}, omnivory.Prey(0))
	assert.Equal(t, []int{0, 1}, omnivory.Predators(2))
}

func TestClone(t *testing.T) {
	c := chain.Clone()
	c[0][2] = 1
	assert.Equal(t, 0, chain[0][2], "clone must not alias the original")
}

func TestTrophicRank(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want []float64
	}{
		{"chain", chain, []float64{3, 2, 1}},
		{"omnivory", omnivory, []float64{2.5, 2, 1}},
		{"two producers", Matrix{{0, 1, 1}, {0, 0, 0}, {0, 0, 0}}, []float64{2, 1, 1}},
		{"cannibal", Matrix{{1, 1}, {0, 0}}, []float64{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrophicRank(tt.m)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TrophicRank mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrophicRankRejectsCycles(t *testing.T) {
	loop := Matrix{
		{0, 1, 1},
		{1, 0, 0},
		{0, 0, 0},
	}
	_, err := TrophicRank(loop)
	require.ErrorIs(t, err, dynamo.ErrValidation)
	assert.Contains(t, err.Error(), "diet cycle")
	assert.True(t, HasCycle(loop))
	assert.False(t, HasCycle(omnivory))

	_, err = TrophicRank(Matrix{{1}})
	assert.ErrorIs(t, err, dynamo.ErrValidation, "a species eating only itself has no rank")
}

func TestDistanceToProducer(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want []int
	}{
		{"chain", chain, []int{3, 2, 1}},
		{"omnivory", omnivory, []int{2, 2, 1}},
		{"cannibal", Matrix{{1, 1}, {0, 0}}, []int{2, 1}},
		{"no producer reachable", Matrix{{0, 1}, {1, 0}}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DistanceToProducer(tt.m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DistanceToProducer(Matrix{})
	assert.ErrorIs(t, err, dynamo.ErrValidation)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, omnivory))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(omnivory, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("0,1\n0,x\n"))
	assert.True(t, errors.Is(err, dynamo.ErrValidation))

	_, err = ReadCSV(strings.NewReader("0,1,0\n0,0,1\n"))
	assert.ErrorIs(t, err, dynamo.ErrValidation)
}
