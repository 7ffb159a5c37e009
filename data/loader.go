// Package data loads daily bar files into tradeable assets. Plain CSV,
// xz-compressed CSV and zip archives holding a CSV are all accepted.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/daywalker/market"
)

// LoadAsset reads a bar file and wraps it as an asset under the given
// symbol.
func LoadAsset(symbol, path string) (*market.Asset, error) {
	bars, err := LoadBars(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, err)
	}
	return market.NewAsset(symbol, bars)
}

// LoadBars reads one bar file. The format is picked by extension: .xz is
// decompressed on the fly, .zip is extracted to a scratch directory and the
// first CSV inside is read, anything else is treated as plain CSV.
func LoadBars(path string) ([]market.Bar, error) {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return loadXZ(path)
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadBars(f)
	}
}

func loadXZ(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	return ReadBars(r)
}

func loadZip(path string) ([]market.Bar, error) {
	dir, err := os.MkdirTemp("", "daywalker-bars-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var csvPath string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if csvPath == "" && !d.IsDir() && strings.HasSuffix(p, ".csv") {
			csvPath = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if csvPath == "" {
		return nil, fmt.Errorf("%s contains no CSV file", path)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBars(f)
}

// ReadBars parses CSV bar data. The header row names the columns; date,
// open, high, low, close and volume are required, divCash defaults to 0
// and splitFactor to 1 when absent.
func ReadBars(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var bars []market.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		bar := market.Bar{DivCash: 0, SplitFactor: 1}
		bar.Date, err = time.Parse("2006-01-02", rec[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date: %w", line, err)
		}

		fields := []struct {
			name     string
			dst      *float64
			required bool
		}{
			{"open", &bar.Open, true},
			{"high", &bar.High, true},
			{"low", &bar.Low, true},
			{"close", &bar.Close, true},
			{"volume", &bar.Volume, true},
			{"divCash", &bar.DivCash, false},
			{"splitFactor", &bar.SplitFactor, false},
		}
		for _, f := range fields {
			i, ok := col[f.name]
			if !ok {
				if f.required {
					return nil, fmt.Errorf("missing column %q", f.name)
				}
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" && !f.required {
				continue
			}
			*f.dst, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s: %w", line, f.name, err)
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
