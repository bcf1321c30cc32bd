package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tonhe/funnel/internal/config"
	"github.com/tonhe/funnel/internal/credential"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/render"
)

// ErrNoEndpoint is returned when a live source is requested for a definition
// without an endpoint.
var ErrNoEndpoint = errors.New("no endpoint configured")

// Definition describes one funnel: where its data comes from and how it is
// drawn. Empty fields inherit from the user's config.
type Definition struct {
	Name       string   `toml:"name"`
	Endpoint   string   `toml:"endpoint"`
	SiteID     string   `toml:"site_id"`
	Steps      []string `toml:"steps"`
	Interval   string   `toml:"interval"`
	Variant    string   `toml:"variant"`
	Credential string   `toml:"credential"`
	Sample     bool     `toml:"sample"`
}

// FromConfig returns the definition implied by cfg alone.
func FromConfig(cfg *config.Config) *Definition {
	d := &Definition{Name: "default"}
	d.Inherit(cfg)
	return d
}

// Inherit fills empty fields from cfg.
func (d *Definition) Inherit(cfg *config.Config) {
	if d.Endpoint == "" {
		d.Endpoint = cfg.Endpoint
	}
	if d.SiteID == "" {
		d.SiteID = cfg.SiteID
	}
	if len(d.Steps) == 0 {
		d.Steps = append([]string(nil), cfg.Steps...)
	}
	if d.Interval == "" {
		d.Interval = cfg.Interval
	}
	if d.Variant == "" {
		d.Variant = cfg.Variant
	}
	if d.Credential == "" {
		d.Credential = cfg.Credential
	}
	d.applyDefaults()
}

func (d *Definition) applyDefaults() {
	if len(d.Steps) == 0 {
		d.Steps = append([]string(nil), engine.DefaultSteps...)
	}
	if d.Interval == "" {
		d.Interval = engine.DefaultInterval
	}
	if d.Variant == "" {
		d.Variant = "area"
	}
}

// Validate checks the interval and variant names.
func (d *Definition) Validate() error {
	var errs []error
	if err := engine.ValidateInterval(d.Interval); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.Lookup(d.Variant); err != nil {
		errs = append(errs, err)
	}
	for _, s := range d.Steps {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("steps must not contain empty paths"))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("funnel %q: %w", d.Name, err)
	}
	return nil
}

// Source returns the data source for d. Sample definitions are served from
// the built-in funnel and need neither endpoint nor credential.
func (d *Definition) Source(tokens credential.TokenSource, timeout time.Duration) (engine.Source, error) {
	if d.Sample {
		return engine.NewSampleSource(), nil
	}
	if d.Endpoint == "" {
		return nil, fmt.Errorf("funnel %q: %w", d.Name, ErrNoEndpoint)
	}
	return engine.NewHTTPSource(d.Endpoint, d.SiteID, d.Steps, d.Credential, tokens, timeout), nil
}

// Load reads a TOML definition at path. The name defaults to the file's base
// name.
func Load(path string) (*Definition, error) {
	var d Definition
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	d.applyDefaults()
	return &d, nil
}

// LoadNamed loads name.toml from dir and fills it from cfg.
func LoadNamed(dir, name string, cfg *config.Config) (*Definition, error) {
	d, err := Load(filepath.Join(dir, name+".toml"))
	if err != nil {
		return nil, err
	}
	d.Inherit(cfg)
	return d, d.Validate()
}

// Save writes d to a TOML file at path.
func Save(d *Definition, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(d)
}

// List returns the base names (without .toml extension) of all TOML files
// found in dir, sorted. A missing directory has no definitions.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".toml") {
			names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	sort.Strings(names)
	return names, nil
}
