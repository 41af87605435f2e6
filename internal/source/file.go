package source

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mediacal/internal/model"
)

// monthEvents is the on-disk shape shared by the canned data and event
// files: events keyed by "YYYY-MM".
type monthEvents map[string][]model.RawEvent

func (m monthEvents) lookup(year int, month time.Month) []model.RawEvent {
	events := m[monthKey(year, month)]
	if len(events) == 0 {
		return []model.RawEvent{}
	}
	out := make([]model.RawEvent, len(events))
	copy(out, events)
	return out
}

//go:embed canned.yaml
var cannedYAML []byte

// Canned serves the built-in demo campaigns. Latency simulates a slow
// backend and honours ctx.
type Canned struct {
	Latency time.Duration
	data    monthEvents
}

// NewCanned decodes the embedded demo data.
func NewCanned(latency time.Duration) (*Canned, error) {
	var data monthEvents
	if err := yaml.Unmarshal(cannedYAML, &data); err != nil {
		return nil, fmt.Errorf("source: decode canned events: %w", err)
	}
	return &Canned{Latency: latency, data: data}, nil
}

func (c *Canned) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	if c.Latency > 0 {
		timer := time.NewTimer(c.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return c.data.lookup(year, month), nil
}

// File reads events keyed by "YYYY-MM" from a YAML or JSON file. The file is
// re-read on every call so edits show up without a restart.
type File struct {
	Path string
}

func (f File) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var decode func([]byte, any) error
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		decode = yaml.Unmarshal
	case ".json":
		decode = json.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Path)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var events monthEvents
	if err := decode(data, &events); err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", f.Path, err)
	}
	return events.lookup(year, month), nil
}
