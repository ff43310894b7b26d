package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Manifest declares the services of one subsystem: identity, dependencies,
// consumed and produced state fields, timeouts. Handlers are bound by id at
// registration time; the manifest itself stays pure data so it can live next
// to course content in any supported storage.
type Manifest struct {
	Subsystem model.Subsystem `yaml:"subsystem" json:"subsystem"`
	Services  []*Definition   `yaml:"services" json:"services"`
}

// Definition is the declarative part of one service descriptor.
type Definition struct {
	ID        string   `yaml:"id" json:"id"`
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
	Requires  []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Produces  []string `yaml:"produces,omitempty" json:"produces,omitempty"`
	Timeout   string   `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Validate reports structural defects: missing ids, duplicates, unparsable
// timeouts.
func (m *Manifest) Validate() error {
	if m.Subsystem == "" {
		return fmt.Errorf("manifest subsystem is required")
	}
	seen := map[string]bool{}
	for _, def := range m.Services {
		if def.ID == "" {
			return fmt.Errorf("manifest %s: service id is required", m.Subsystem)
		}
		if seen[def.ID] {
			return types.NewDuplicateServiceError(string(m.Subsystem), def.ID)
		}
		seen[def.ID] = true
		if def.Timeout != "" {
			if _, err := time.ParseDuration(def.Timeout); err != nil {
				return fmt.Errorf("manifest %s: service %s has invalid timeout %q: %w", m.Subsystem, def.ID, def.Timeout, err)
			}
		}
	}
	return nil
}

// Register binds every definition to its handler and registers the resulting
// descriptors. Handlers are looked up by service id; a definition without a
// handler is a configuration defect.
func (m *Manifest) Register(reg *registry.Service, handlers map[string]types.Handler) error {
	if err := m.Validate(); err != nil {
		return err
	}
	for _, def := range m.Services {
		handler, ok := handlers[def.ID]
		if !ok {
			return fmt.Errorf("manifest %s: no handler bound for service %s", m.Subsystem, def.ID)
		}
		var timeout time.Duration
		if def.Timeout != "" {
			timeout, _ = time.ParseDuration(def.Timeout)
		}
		err := reg.Register(&model.Service{
			ID:        def.ID,
			Subsystem: m.Subsystem,
			DependsOn: def.DependsOn,
			Requires:  def.Requires,
			Produces:  def.Produces,
			Timeout:   timeout,
			Handler:   handler,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DecodeYAML decodes a manifest from YAML bytes.
func DecodeYAML(encoded []byte) (*Manifest, error) {
	manifest := &Manifest{}
	if err := yaml.Unmarshal(encoded, manifest); err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Service loads subsystem manifests through the abstract file system.
type Service struct {
	baseURL string
	fs      afs.Service
}

// Load loads a manifest from YAML at the specified URL; relative locations
// resolve against the configured base URL and a missing extension defaults
// to .yaml.
func (s *Service) Load(ctx context.Context, URL string) (*Manifest, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	if url.IsRelative(URL) && s.baseURL != "" {
		URL = url.Join(s.baseURL, URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest from %s: %w", URL, err)
	}
	manifest, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest from %s: %w", URL, err)
	}
	return manifest, nil
}

// New creates a manifest loader with an optional base URL for relative
// locations.
func New(baseURL string) *Service {
	return &Service{baseURL: baseURL, fs: afs.New()}
}
