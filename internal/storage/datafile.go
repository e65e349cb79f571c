package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/vvho/internal/dynamo"
)

var header = []string{"# Time", "Position", "Velocity", "Total Energy"}

// FileName builds the data file name of a trial series,
// dt<step>_v<velocity>[_rev][_T].dat.
func FileName(timeStep, velocity float64, reverse, timeDriven bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dt%g_v%g", timeStep, velocity)
	if reverse {
		sb.WriteString("_rev")
	}
	if timeDriven {
		sb.WriteString("_T")
	}
	sb.WriteString(".dat")
	return sb.String()
}

// ChartName swaps the extension of a data file name for .png.
func ChartName(dataName string) string {
	return strings.TrimSuffix(dataName, filepath.Ext(dataName)) + ".png"
}

// WriteTrajectory writes time, position, velocity and total energy as
// tab-separated columns with four decimals, one row per sample.
func WriteTrajectory(path string, traj *dynamo.Trajectory) error {
	if !traj.Aligned() {
		return fmt.Errorf("write %s: %w", path, dynamo.ErrTrajectoryMismatch)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	w := csv.NewWriter(buf)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 4)
	for i := range traj.Time {
		row[0] = strconv.FormatFloat(traj.Time[i], 'f', 4, 64)
		row[1] = strconv.FormatFloat(traj.Position[i], 'f', 4, 64)
		row[2] = strconv.FormatFloat(traj.Velocity[i], 'f', 4, 64)
		row[3] = strconv.FormatFloat(traj.Energy[i], 'f', 4, 64)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// ReadTrajectory loads a data file written by WriteTrajectory.
func ReadTrajectory(path string) (*dynamo.Trajectory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(bufio.NewReader(file))
	r.Comma = '\t'
	r.Comment = '#'
	r.FieldsPerRecord = len(header)
	r.ReuseRecord = true

	traj := &dynamo.Trajectory{}
	for line := 1; ; line++ {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var vals [4]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("read %s row %d: %w", path, line, err)
			}
		}

		traj.Time = append(traj.Time, vals[0])
		traj.Position = append(traj.Position, vals[1])
		traj.Velocity = append(traj.Velocity, vals[2])
		traj.Energy = append(traj.Energy, vals[3])
	}

	return traj, nil
}
