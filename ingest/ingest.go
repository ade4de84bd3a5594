// Package ingest loads artifacts and operations from YAML fixture documents
// into a store.
package ingest

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/provgraph/attach"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

// Batch is one YAML document: artifacts first, then the operations that
// attach them.
type Batch struct {
	Artifacts  []types.Artifact  `yaml:"artifacts"`
	Operations []types.Operation `yaml:"operations"`
}

// Target is what a processor reads and writes.
type Target interface {
	store.ArtifactStore
	store.Writer
}

// Result summarizes one Process call.
type Result struct {
	DryRun     bool      `json:"dry_run"`
	Documents  int       `json:"documents"`
	Artifacts  int       `json:"artifacts"`
	Operations int       `json:"operations"`
	Generated  []string  `json:"generated_ids,omitempty"` // ids assigned to records that had none
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// Processor validates and writes batches.
type Processor struct {
	target  Target
	schemas schema.Provider
	dryRun  bool
	newID   func() string
	logger  *zap.SugaredLogger
}

// NewProcessor creates a processor. With schemas set, every operation must
// have a schema, and its attachments are checked against the schema's kind
// tree when it declares one. A dry run validates without writing.
func NewProcessor(target Target, schemas schema.Provider, dryRun bool, log *zap.SugaredLogger) *Processor {
	return &Processor{
		target:  target,
		schemas: schemas,
		dryRun:  dryRun,
		newID:   func() string { return uuid.New().String() },
		logger:  logger.OrNop(log).Named("ingest"),
	}
}

// Process reads every YAML document from r. All documents are validated
// before anything is written.
func (p *Processor) Process(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{DryRun: p.dryRun, StartTime: time.Now()}

	var batches []Batch
	dec := yaml.NewDecoder(r)
	for {
		var b Batch
		err := dec.Decode(&b)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Invalidf("document %d: %v", len(batches)+1, err)
		}
		batches = append(batches, b)
	}
	result.Documents = len(batches)

	known := make(map[string]string) // artifact id -> type URN within this input
	for bi := range batches {
		b := &batches[bi]
		for i := range b.Artifacts {
			a := &b.Artifacts[i]
			if a.ID == "" {
				a.ID = p.newID()
				result.Generated = append(result.Generated, a.ID)
			}
			known[a.ID] = a.TypeURN
		}
		for i := range b.Operations {
			op := &b.Operations[i]
			if op.ID == "" {
				op.ID = p.newID()
				result.Generated = append(result.Generated, op.ID)
			}
		}
	}

	for _, b := range batches {
		for i := range b.Operations {
			if err := p.validate(ctx, &b.Operations[i], known); err != nil {
				return nil, err
			}
		}
	}

	for _, b := range batches {
		for i := range b.Artifacts {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "ingest")
			}
			if !p.dryRun {
				if err := p.target.PutArtifact(ctx, &b.Artifacts[i]); err != nil {
					return nil, errors.Wrapf(err, "artifact %s", b.Artifacts[i].ID)
				}
			}
			result.Artifacts++
		}
		for i := range b.Operations {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "ingest")
			}
			if !p.dryRun {
				if err := p.target.PutOperation(ctx, &b.Operations[i]); err != nil {
					return nil, errors.Wrapf(err, "operation %s", b.Operations[i].ID)
				}
			}
			result.Operations++
		}
	}

	result.EndTime = time.Now()
	p.logger.Infow("Ingest complete",
		logger.FieldArtifacts, result.Artifacts,
		"operations", result.Operations,
		"generated", len(result.Generated),
		"dry_run", p.dryRun,
	)
	return result, nil
}

// validate checks an operation against its schema. Artifacts are resolved
// from the input first, then from the store.
func (p *Processor) validate(ctx context.Context, op *types.Operation, known map[string]string) error {
	if op.TypeURN == "" {
		return errors.Invalidf("operation %s has no type_urn", op.ID)
	}
	if p.schemas == nil {
		return nil
	}
	s, err := p.schemas.GetOperationSchema(ctx, op.TypeURN)
	if err != nil {
		return errors.Wrapf(err, "operation %s", op.ID)
	}
	if len(s.Attachments.ChildKinds) == 0 {
		return nil
	}

	var lookupErr error
	typeOf := func(id string) (string, bool) {
		if t, ok := known[id]; ok {
			return t, true
		}
		a, err := p.target.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, errors.ErrNotFound) && lookupErr == nil {
				lookupErr = err
			}
			return "", false
		}
		return a.TypeURN, true
	}

	ag := attach.FromTransformList(op.Attachments, p.logger)
	err = s.ValidateAttachments(ag, typeOf)
	if lookupErr != nil {
		return errors.Wrapf(lookupErr, "operation %s", op.ID)
	}
	return errors.Wrapf(err, "operation %s", op.ID)
}
