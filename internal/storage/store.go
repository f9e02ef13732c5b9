package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rewire"
	"github.com/san-kum/befsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	biomassFile   = "biomass.csv"
	adjacencyFile = "adjacency.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Record is a finished run as handed to Save.
type Record struct {
	Name       string
	Seed       int64
	Integrator string
	Start      float64
	Stop       float64
	Options    params.Options
	Result     *sim.Result
	Summary    metrics.Summary
}

type RunMetadata struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Timestamp   time.Time           `json:"timestamp"`
	Seed        int64               `json:"seed"`
	Species     int                 `json:"species"`
	Links       int                 `json:"links"`
	Start       float64             `json:"start"`
	Stop        float64             `json:"stop"`
	Checkpoints int                 `json:"checkpoints"`
	Integrator  string              `json:"integrator"`
	Status      sim.Status          `json:"status"`
	Cause       string              `json:"cause,omitempty"`
	Options     params.Options      `json:"options"`
	Summary     metrics.Summary     `json:"summary"`
	Metrics     map[string]float64  `json:"metrics"`
	Extinctions []rewire.Extinction `json:"extinctions"`
	Rewirings   int                 `json:"rewirings"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(rec Record) (*RunMetadata, error) {
	res := rec.Result
	meta := &RunMetadata{
		ID:          uuid.NewString(),
		Name:        rec.Name,
		Timestamp:   time.Now().UTC(),
		Seed:        rec.Seed,
		Start:       rec.Start,
		Stop:        rec.Stop,
		Checkpoints: len(res.Times),
		Integrator:  rec.Integrator,
		Status:      res.Status,
		Options:     rec.Options,
		Summary:     rec.Summary,
		Metrics:     res.Metrics,
		Extinctions: res.Extinctions,
		Rewirings:   res.Rewirings,
	}
	if res.Cause != nil {
		meta.Cause = res.Cause.Error()
	}
	if res.Final != nil {
		meta.Species = res.Final.Size()
		meta.Links = foodweb.Links(res.Final.A)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return nil, err
	}
	if err := writeTrajectory(filepath.Join(runDir, biomassFile), res.Times, res.Biomass); err != nil {
		return nil, err
	}
	if res.Final != nil {
		f, err := os.Create(filepath.Join(runDir, adjacencyFile))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := foodweb.WriteCSV(f, res.Final.A); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, times []float64, biomass [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(biomass) > 0 {
		header := []string{"time"}
		for i := range biomass[0] {
			header = append(header, fmt.Sprintf("s%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for k, row := range biomass {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(times[k], 'g', -1, 64))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads the checkpoint times and biomass of a run.
func (s *Store) LoadTrajectory(runID string) ([]float64, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, biomassFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	biomass := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", biomassFile, i+2, err)
			}
			values[j] = v
		}
		times = append(times, values[0])
		biomass = append(biomass, values[1:])
	}
	return times, biomass, nil
}

// LoadNetwork reads the final adjacency matrix of a run.
func (s *Store) LoadNetwork(runID string) (foodweb.Matrix, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, adjacencyFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return foodweb.ReadCSV(f)
}

type ExportData struct {
	Run     *RunMetadata   `json:"run"`
	Times   []float64      `json:"times"`
	Biomass [][]float64    `json:"biomass"`
	Network foodweb.Matrix `json:"network,omitempty"`
}

// ExportJSON writes a stored run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, biomass, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	network, err := s.LoadNetwork(runID)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Times: times, Biomass: biomass, Network: network})
}
