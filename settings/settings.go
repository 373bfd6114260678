package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oomph-ac/portals/dimension"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured for portal resolution.
type Settings struct {
	Search struct {
		// Radius is the radius in blocks searched for an existing portal between dimensions of equal scale.
		Radius int
	}
	Build struct {
		// Width and Height are the interior size of built portals.
		Width, Height int
		// Radius is the horizontal radius searched for a clear site.
		Radius int
		// VerticalSearch is the maximum vertical offset tried in every column.
		VerticalSearch int
		// Budget is the maximum amount of candidate sites checked per portal.
		Budget int
	}
	Placement struct {
		// PreserveOrientation carries the yaw and pitch of entities through portals.
		PreserveOrientation bool
		// PreserveVelocity carries the velocity of entities through portals.
		PreserveVelocity bool
	}
	// Dimensions are the dimensions known to the service.
	Dimensions []Dimension
}

// Dimension is the configuration of a single dimension.
type Dimension struct {
	// Name uniquely identifies the dimension.
	Name string
	// Scale is the coordinate scale of the dimension relative to the overworld.
	Scale float64
	// MinY and MaxY are the vertical bounds of the dimension. Both zero means the dimension is unbounded.
	MinY, MaxY int
}

// Dimension returns the dimension.Dimension described by the settings.
func (d Dimension) Dimension() dimension.Dimension {
	return dimension.Dimension{Name: d.Name, Scale: d.Scale, Range: cube.Range{d.MinY, d.MaxY}}
}

// DefaultSettings returns the default settings, with the three vanilla dimensions.
func DefaultSettings() Settings {
	s := Settings{}
	s.Search.Radius = 128

	s.Build.Width = 2
	s.Build.Height = 3
	s.Build.Radius = 16
	s.Build.VerticalSearch = 16
	s.Build.Budget = 4096

	for _, d := range []dimension.Dimension{dimension.Overworld, dimension.Nether, dimension.End} {
		s.Dimensions = append(s.Dimensions, Dimension{Name: d.Name, Scale: d.Scale, MinY: d.Range.Min(), MaxY: d.Range.Max()})
	}
	return s
}

// Validate returns an error if the settings cannot be used.
func (s Settings) Validate() error {
	if s.Search.Radius <= 0 {
		return fmt.Errorf("search radius must be positive, got %d", s.Search.Radius)
	}
	if s.Build.Budget <= 0 {
		return fmt.Errorf("build budget must be positive, got %d", s.Build.Budget)
	}
	seen := make(map[string]struct{}, len(s.Dimensions))
	for _, d := range s.Dimensions {
		if d.Name == "" {
			return errors.New("dimension without a name")
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("dimension %q configured twice", d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.Scale <= 0 {
			return fmt.Errorf("dimension %q must have a positive scale, got %v", d.Name, d.Scale)
		}
		if d.MinY > d.MaxY {
			return fmt.Errorf("dimension %q has min y %d above max y %d", d.Name, d.MinY, d.MaxY)
		}
	}
	return nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	} else if err != nil {
		return Settings{}, fmt.Errorf("error reading settings: %w", err)
	}

	s := DefaultSettings()
	s.Dimensions = nil
	if err = toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("error decoding settings: %w", err)
	}
	if len(s.Dimensions) == 0 {
		s.Dimensions = DefaultSettings().Dimensions
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}
