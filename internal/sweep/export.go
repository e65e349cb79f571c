package sweep

import (
	"fmt"

	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/render"
	"github.com/san-kum/vvho/internal/storage"
)

// FileExporter writes each trial's three data files into a sweep
// directory, optionally renders its chart, and records it in the
// manifest.
type FileExporter struct {
	Run  *storage.Run
	Plot bool
}

func (e *FileExporter) Export(res *TrialResult) error {
	dt, v := res.TimeStep, res.Velocity

	rec := storage.TrialRecord{
		TimeStep:     dt,
		Velocity:     v,
		Steps:        res.Steps,
		ReverseSteps: res.ReverseSteps,
		Forward:      storage.FileName(dt, v, false, false),
		Reverse:      storage.FileName(dt, v, true, false),
		Taylor:       storage.FileName(dt, v, false, true),
		Diverged:     !res.Finite,
		Metrics:      res.Summary.Map(),
	}

	for _, f := range []struct {
		traj *dynamo.Trajectory
		name string
	}{
		{res.Forward, rec.Forward},
		{res.Reverse, rec.Reverse},
		{res.Taylor, rec.Taylor},
	} {
		if _, err := e.Run.WriteTrajectory(f.traj, f.name); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	if e.Plot && res.Forward.Len() > 0 {
		chart := storage.ChartName(rec.Forward)
		spec := render.Spec{
			Title:           fmt.Sprintf("dt = %g, v0 = %g", dt, v),
			Forward:         e.Run.Path(rec.Forward),
			Reverse:         e.Run.Path(rec.Reverse),
			Taylor:          e.Run.Path(rec.Taylor),
			PosStart:        res.PosStart,
			InitialVelocity: v,
			MeanEnergy:      res.Summary.MeanEnergy,
			MaxPosition:     res.Summary.MaxPosition,
			MaxEnergy:       res.Summary.MaxEnergy,
			Output:          e.Run.Path(chart),
		}
		if err := render.Draw(spec, res.Forward, res.Reverse, res.Taylor); err != nil {
			return fmt.Errorf("render %s: %w", chart, err)
		}
		rec.Chart = chart
	}

	e.Run.AddTrial(rec)
	return nil
}
