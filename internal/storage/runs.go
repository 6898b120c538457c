package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Jeff0327/adsblog/internal/models"
)

// RecordRun inserts the audit row of one generation cycle and returns its ID.
func (s *Store) RecordRun(ctx context.Context, run *models.GenerationRun) (int64, error) {
	var finishedAt *string
	if run.FinishedAt != nil {
		v := formatTime(*run.FinishedAt)
		finishedAt = &v
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_runs
			(run_id, tenant_key, status, error_kind, stage, provider, model, topic,
			 post_id, message, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.TenantKey, run.Status, nullableString(run.ErrorKind),
		nullableString(run.Stage), nullableString(run.Provider), nullableString(run.Model),
		nullableString(run.Topic), run.PostID, nullableString(run.Message),
		formatTime(run.StartedAt), finishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run %s: %w", run.RunID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run id: %w", err)
	}
	return id, nil
}

// RecentRuns returns the tenant's most recent generation runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, tenantKey string, limit int) ([]models.GenerationRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, tenant_key, status, error_kind, stage, provider, model,
				topic, post_id, message, started_at, finished_at
		 FROM generation_runs
		 WHERE tenant_key = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, tenantKey, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs for %q: %w", tenantKey, err)
	}
	defer rows.Close()

	var runs []models.GenerationRun
	for rows.Next() {
		var (
			run        models.GenerationRun
			errorKind  sql.NullString
			stage      sql.NullString
			provider   sql.NullString
			model      sql.NullString
			topic      sql.NullString
			postID     sql.NullInt64
			message    sql.NullString
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.TenantKey, &run.Status, &errorKind, &stage,
			&provider, &model, &topic, &postID, &message, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.ErrorKind = errorKind.String
		run.Stage = stage.String
		run.Provider = provider.String
		run.Model = model.String
		run.Topic = topic.String
		if postID.Valid {
			v := postID.Int64
			run.PostID = &v
		}
		run.Message = message.String
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTimePtr(finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
