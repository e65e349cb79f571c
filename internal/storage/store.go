package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/san-kum/vvho/internal/dynamo"
)

const manifestFile = "manifest.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(sweepID string) string {
	return filepath.Join(s.baseDir, sweepID)
}

// Manifest describes one stored sweep.
type Manifest struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	TotalTime  float64       `json:"total_time"`
	PosStart   float64       `json:"pos_start"`
	TimeSteps  []float64     `json:"time_steps"`
	Velocities []float64     `json:"velocities"`
	Trials     []TrialRecord `json:"trials"`
}

type TrialRecord struct {
	TimeStep     float64            `json:"dt"`
	Velocity     float64            `json:"velocity"`
	Steps        int                `json:"steps"`
	ReverseSteps int                `json:"reverse_steps"`
	Forward      string             `json:"forward"`
	Reverse      string             `json:"reverse"`
	Taylor       string             `json:"taylor"`
	Chart        string             `json:"chart,omitempty"`
	Diverged     bool               `json:"diverged,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Run is an open sweep directory. Trials may be added from several
// goroutines; Close writes the manifest.
type Run struct {
	dir      string
	mu       sync.Mutex
	manifest Manifest
}

// Begin creates a new sweep directory under the store.
func (s *Store) Begin(totalTime, posStart float64, timeSteps, velocities []float64) (*Run, error) {
	now := time.Now()
	sweepID := fmt.Sprintf("sweep_%d", now.UnixNano())
	dir := s.Dir(sweepID)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Run{
		dir: dir,
		manifest: Manifest{
			ID:         sweepID,
			Timestamp:  now,
			TotalTime:  totalTime,
			PosStart:   posStart,
			TimeSteps:  timeSteps,
			Velocities: velocities,
		},
	}, nil
}

func (r *Run) ID() string { return r.manifest.ID }

func (r *Run) Dir() string { return r.dir }

// Path returns the location of name inside the sweep directory.
func (r *Run) Path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *Run) WriteTrajectory(traj *dynamo.Trajectory, name string) (string, error) {
	path := r.Path(name)
	if err := WriteTrajectory(path, traj); err != nil {
		return "", err
	}
	return path, nil
}

// AddTrial records a trial. Non-finite metrics are dropped since JSON
// cannot carry them.
func (r *Run) AddTrial(rec TrialRecord) {
	metrics := make(map[string]float64, len(rec.Metrics))
	for k, v := range rec.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		metrics[k] = v
	}
	rec.Metrics = metrics

	r.mu.Lock()
	r.manifest.Trials = append(r.manifest.Trials, rec)
	r.mu.Unlock()
}

// Close sorts the trials by time step and velocity and writes the manifest.
func (r *Run) Close() (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sort.SliceStable(r.manifest.Trials, func(i, j int) bool {
		a, b := r.manifest.Trials[i], r.manifest.Trials[j]
		if a.TimeStep != b.TimeStep {
			return a.TimeStep < b.TimeStep
		}
		return a.Velocity < b.Velocity
	})

	metaFile, err := os.Create(r.Path(manifestFile))
	if err != nil {
		return nil, err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.manifest); err != nil {
		return nil, err
	}

	m := r.manifest
	return &m, nil
}

func (s *Store) List() ([]Manifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Manifest{}, nil
		}
		return nil, err
	}

	runs := make([]Manifest, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		m, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *m)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(sweepID string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(sweepID), manifestFile))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", sweepID, err)
	}

	return &m, nil
}
