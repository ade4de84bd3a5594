package schema

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
)

// VersionSeparator splits an optional semver constraint off a requested type
// URN, e.g. "urn:op:mill@^2".
const VersionSeparator = "@"

// MapProvider serves schemas held in memory. Several versions of one type URN
// may be registered; lookups pick the highest version satisfying the request.
type MapProvider struct {
	mu      sync.RWMutex
	schemas map[string][]*OperationSchema
}

// NewMapProvider returns a provider holding the given schemas.
func NewMapProvider(schemas ...*OperationSchema) *MapProvider {
	p := &MapProvider{schemas: make(map[string][]*OperationSchema)}
	for _, s := range schemas {
		p.add(s)
	}
	return p
}

// Register adds a schema.
func (p *MapProvider) Register(s *OperationSchema) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(s)
}

func (p *MapProvider) add(s *OperationSchema) {
	p.schemas[s.TypeURN] = append(p.schemas[s.TypeURN], s)
}

func (p *MapProvider) replace(schemas map[string][]*OperationSchema) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.schemas = schemas
}

// TypeURNs lists registered type URNs in order.
func (p *MapProvider) TypeURNs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	urns := make([]string, 0, len(p.schemas))
	for urn := range p.schemas {
		urns = append(urns, urn)
	}
	sort.Strings(urns)
	return urns
}

// GetOperationSchema implements Provider.
func (p *MapProvider) GetOperationSchema(ctx context.Context, typeURN string) (*OperationSchema, error) {
	urn, constraintText, hasConstraint := strings.Cut(typeURN, VersionSeparator)

	p.mu.RLock()
	candidates := p.schemas[urn]
	p.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, errors.Wrapf(errors.ErrSchemaNotFound, "type %s", urn)
	}

	var constraint *semver.Constraints
	if hasConstraint {
		c, err := semver.NewConstraint(constraintText)
		if err != nil {
			return nil, errors.Invalidf("version constraint %q: %v", constraintText, err)
		}
		constraint = c
	}

	var best *OperationSchema
	var bestVersion *semver.Version
	for _, s := range candidates {
		v, err := parseVersion(s.Version)
		if err != nil {
			// Unversioned or malformed schemas only match unconstrained lookups.
			if constraint == nil && best == nil {
				best = s
			}
			continue
		}
		if constraint != nil && !constraint.Check(v) {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = s, v
		}
	}
	if best == nil {
		return nil, errors.Wrapf(errors.ErrSchemaNotFound, "type %s matching %s", urn, constraintText)
	}
	return best, nil
}

func parseVersion(v string) (*semver.Version, error) {
	if v == "" {
		return nil, errors.New("no version")
	}
	return semver.NewVersion(v)
}

// DirProvider loads schemas from the YAML files of a directory. A file holds
// one schema document, or several separated by "---".
type DirProvider struct {
	*MapProvider
	dir    string
	logger *zap.SugaredLogger
}

// NewDirProvider loads every *.yaml / *.yml file in dir.
func NewDirProvider(dir string, log *zap.SugaredLogger) (*DirProvider, error) {
	p := &DirProvider{
		MapProvider: NewMapProvider(),
		dir:         dir,
		logger:      logger.OrNop(log),
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Dir returns the watched directory.
func (p *DirProvider) Dir() string {
	return p.dir
}

// Reload re-reads the directory and swaps the registered schemas atomically.
// On error the previous schemas stay in place.
func (p *DirProvider) Reload() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return errors.Wrapf(err, "read schema dir %s", p.dir)
	}

	loaded := make(map[string][]*OperationSchema)
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isSchemaFile(name) {
			continue
		}
		path := filepath.Join(p.dir, name)
		schemas, err := LoadFile(path)
		if err != nil {
			return err
		}
		for _, s := range schemas {
			loaded[s.TypeURN] = append(loaded[s.TypeURN], s)
			count++
		}
	}

	p.replace(loaded)
	p.logger.Infow("Loaded operation schemas",
		logger.FieldPath, p.dir,
		logger.FieldCount, count,
	)
	return nil
}

// LoadFile decodes all schema documents in a YAML file.
func LoadFile(path string) ([]*OperationSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open schema %s", path)
	}
	defer f.Close()

	var schemas []*OperationSchema
	dec := yaml.NewDecoder(f)
	for {
		var s OperationSchema
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrapf(err, "decode schema %s", path)
		}
		if s.TypeURN == "" {
			return nil, errors.Newf("schema in %s has no type_urn", path)
		}
		schemas = append(schemas, &s)
	}
	return schemas, nil
}

func isSchemaFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
