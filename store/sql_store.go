package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/types"
)

// Query constants
const (
	artifactColumns = `id, type_urn, tags, parent_frame, transform, attributes`

	ArtifactGetQuery = `
		SELECT ` + artifactColumns + `
		FROM artifacts WHERE id = ?`

	ArtifactListByParentFrameQuery = `
		SELECT ` + artifactColumns + `
		FROM artifacts WHERE parent_frame = ? ORDER BY id`

	ArtifactUpsertQuery = `
		INSERT INTO artifacts (id, type_urn, tags, parent_frame, transform, attributes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type_urn = excluded.type_urn,
			tags = excluded.tags,
			parent_frame = excluded.parent_frame,
			transform = excluded.transform,
			attributes = excluded.attributes,
			updated_at = CURRENT_TIMESTAMP`

	OperationUpsertQuery = `
		INSERT INTO operations (id, type_urn, active, attachments, parameters)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type_urn = excluded.type_urn,
			active = excluded.active,
			attachments = excluded.attachments,
			parameters = excluded.parameters,
			updated_at = CURRENT_TIMESTAMP`

	OperationIndexDeleteQuery = `DELETE FROM operation_artifacts WHERE operation_id = ?`

	OperationIndexInsertQuery = `
		INSERT INTO operation_artifacts (operation_id, artifact_id, direction)
		VALUES (?, ?, ?)`

	OperationListByAttachedQuery = `
		SELECT DISTINCT o.id, o.type_urn, o.active, o.attachments, o.parameters
		FROM operations o
		JOIN operation_artifacts oa ON oa.operation_id = o.id
		WHERE oa.artifact_id = ?
			AND (? = 0 OR oa.direction = 'output')
			AND (? = 0 OR o.active = 1)
		ORDER BY o.id`

	StatsQuery = `
		SELECT
			(SELECT COUNT(*) FROM artifacts),
			(SELECT COUNT(*) FROM artifacts WHERE transform IS NOT NULL),
			(SELECT COUNT(*) FROM operations),
			(SELECT COUNT(*) FROM operations WHERE active = 1),
			(SELECT COUNT(*) FROM operation_artifacts)`
)

// SQLStore implements Store with a SQLite backend. Migrations from package db
// must have been applied.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a SQL-backed store.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger.OrNop(log),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*types.Artifact, error) {
	var (
		a           types.Artifact
		tagsJSON    string
		parentFrame sql.NullString
		transform   sql.NullString
		attrsJSON   string
	)
	if err := row.Scan(&a.ID, &a.TypeURN, &tagsJSON, &parentFrame, &transform, &attrsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
		return nil, errors.Wrapf(err, "unmarshal tags of %s", a.ID)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &a.Attributes); err != nil {
		return nil, errors.Wrapf(err, "unmarshal attributes of %s", a.ID)
	}
	if len(a.Attributes) == 0 {
		a.Attributes = nil
	}
	if transform.Valid {
		a.SpatialFrame = &types.SpatialFrame{ParentFrame: parentFrame.String}
		if err := json.Unmarshal([]byte(transform.String), &a.SpatialFrame.Transform); err != nil {
			return nil, errors.Wrapf(err, "unmarshal transform of %s", a.ID)
		}
	}
	return &a, nil
}

// Get implements ArtifactStore.
func (s *SQLStore) Get(ctx context.Context, id string) (*types.Artifact, error) {
	a, err := scanArtifact(s.db.QueryRowContext(ctx, ArtifactGetQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ArtifactNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get artifact %s", id)
	}
	return a, nil
}

// ListByParentFrame implements ArtifactStore.
func (s *SQLStore) ListByParentFrame(ctx context.Context, id string) ([]types.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, ArtifactListByParentFrameQuery, id)
	if err != nil {
		return nil, errors.Wrapf(err, "list frame children of %s", id)
	}
	defer rows.Close()

	var out []types.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan frame child of %s", id)
		}
		out = append(out, *a)
	}
	return out, errors.Wrap(rows.Err(), "iterate frame children")
}

// ListByAttached implements OperationStore.
func (s *SQLStore) ListByAttached(ctx context.Context, artifactID string, opts ListOptions) ([]types.Operation, error) {
	rows, err := s.db.QueryContext(ctx, OperationListByAttachedQuery, artifactID, boolInt(opts.OutputOnly), boolInt(opts.ActiveOnly))
	if err != nil {
		return nil, errors.Wrapf(err, "list operations attached to %s", artifactID)
	}
	defer rows.Close()

	var out []types.Operation
	for rows.Next() {
		var (
			op         types.Operation
			active     int
			attachJSON string
			paramsJSON sql.NullString
		)
		if err := rows.Scan(&op.ID, &op.TypeURN, &active, &attachJSON, &paramsJSON); err != nil {
			return nil, errors.Wrap(err, "scan operation")
		}
		op.Active = active == 1
		if err := json.Unmarshal([]byte(attachJSON), &op.Attachments); err != nil {
			return nil, errors.Wrapf(err, "unmarshal attachments of %s", op.ID)
		}
		if paramsJSON.Valid && paramsJSON.String != "" {
			if err := json.Unmarshal([]byte(paramsJSON.String), &op.Parameters); err != nil {
				return nil, errors.Wrapf(err, "unmarshal parameters of %s", op.ID)
			}
		}
		out = append(out, op)
	}
	return out, errors.Wrap(rows.Err(), "iterate operations")
}

// PutArtifact inserts or replaces an artifact.
func (s *SQLStore) PutArtifact(ctx context.Context, a *types.Artifact) error {
	if a == nil || a.ID == "" {
		return errors.Invalidf("artifact needs an id")
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return errors.Wrap(err, "marshal tags")
	}
	attrs := a.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrap(err, "marshal attributes")
	}

	var parentFrame, transform interface{}
	if a.SpatialFrame != nil {
		parentFrame = a.SpatialFrame.ParentFrame
		t, err := json.Marshal(a.SpatialFrame.Transform)
		if err != nil {
			return errors.Wrap(err, "marshal transform")
		}
		transform = string(t)
	}

	if _, err := s.db.ExecContext(ctx, ArtifactUpsertQuery,
		a.ID, a.TypeURN, string(tagsJSON), parentFrame, transform, string(attrsJSON)); err != nil {
		return errors.Wrapf(err, "upsert artifact %s", a.ID)
	}
	s.logger.Debugw("Stored artifact", logger.FieldArtifactID, a.ID, logger.FieldTypeURN, a.TypeURN)
	return nil
}

// PutOperation inserts or replaces an operation and rebuilds its rows in the
// artifact index, in one transaction.
func (s *SQLStore) PutOperation(ctx context.Context, op *types.Operation) error {
	if op == nil || op.ID == "" {
		return errors.Invalidf("operation needs an id")
	}
	attachments := op.Attachments
	if attachments == nil {
		attachments = []types.AttachmentTransform{}
	}
	attachJSON, err := json.Marshal(attachments)
	if err != nil {
		return errors.Wrap(err, "marshal attachments")
	}
	var params interface{}
	if op.Parameters != nil {
		p, err := json.Marshal(op.Parameters)
		if err != nil {
			return errors.Wrap(err, "marshal parameters")
		}
		params = string(p)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin operation tx")
	}
	if _, err := tx.ExecContext(ctx, OperationUpsertQuery, op.ID, op.TypeURN, boolInt(op.Active), string(attachJSON), params); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "upsert operation %s", op.ID)
	}
	if _, err := tx.ExecContext(ctx, OperationIndexDeleteQuery, op.ID); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "clear index of %s", op.ID)
	}
	rows := attachmentRows(op)
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, OperationIndexInsertQuery, op.ID, row[0], row[1]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "index %s on %s", row[0], op.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit operation %s", op.ID)
	}

	s.logger.Debugw("Stored operation",
		logger.FieldOperationID, op.ID,
		logger.FieldTypeURN, op.TypeURN,
		logger.FieldArtifacts, len(rows),
	)
	return nil
}

// Stats counts stored records.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, StatsQuery).Scan(
		&st.Artifacts, &st.FramedArtifacts, &st.Operations, &st.ActiveOperations, &st.Attachments)
	if err != nil {
		return nil, errors.Wrap(err, "query store stats")
	}
	return &st, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
