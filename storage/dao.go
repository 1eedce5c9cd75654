package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zefrenchwan/docfilters.git/mutations"
)

const (
	// DATE_STORAGE_FORMAT is golang representaion of dates. In terms of postgresql, it means YYYY-MM-DD HH24:MI:ss
	DATE_STORAGE_FORMAT = "2006-01-02T15:04:05"
)

// Dao defines all database operations
type Dao struct {
	// pool to deal with multiple connections
	pool *pgxpool.Pool
}

// NewDao builds a new dao to connect a database via its url
func NewDao(ctx context.Context, url string) (Dao, error) {
	var dao Dao
	if pool, errPool := pgxpool.New(ctx, url); errPool != nil {
		return dao, fmt.Errorf("dao creation failed: %s", errPool.Error())
	} else {
		dao.pool = pool
	}

	return dao, nil
}

// ErrNoPool is returned by a dao with no connection
var ErrNoPool = errors.New("dao has no connection pool")

// ready returns ErrNoPool if the dao cannot query
func (d *Dao) ready() error {
	if d == nil || d.pool == nil {
		return ErrNoPool
	}

	return nil
}

// CheckUser returns true if login and password match an active user
func (d *Dao) CheckUser(ctx context.Context, login, password string) (bool, error) {
	var matching bool
	if err := d.ready(); err != nil {
		return false, err
	} else if err := d.pool.QueryRow(ctx, "select susers.test_user_password($1, $2)", login, password).Scan(&matching); err != nil {
		return false, fmt.Errorf("user %s: %w", login, err)
	}

	return matching, nil
}

// FindSecretForActiveUser returns the token secret of an active user.
// Unknown or inactive users are not found.
func (d *Dao) FindSecretForActiveUser(ctx context.Context, login string) (string, error) {
	var secret string
	if err := d.ready(); err != nil {
		return "", err
	} else if err := d.pool.QueryRow(ctx, "select susers.find_secret_for_user($1)", login).Scan(&secret); err != nil {
		return "", AsDocumentError(err)
	}

	return secret, nil
}

// UpsertUser sets the password of login, creating the user if needed
func (d *Dao) UpsertUser(ctx context.Context, creator, login, password string) error {
	if err := d.ready(); err != nil {
		return err
	}

	_, errExec := d.pool.Exec(ctx, "call susers.upsert_user($1,$2,$3)", creator, login, password)
	return errExec
}

// LoadSnapshot reads the last snapshot of a document
func (d *Dao) LoadSnapshot(ctx context.Context, documentId string) (DocumentDTO, error) {
	var result DocumentDTO
	if err := d.ready(); err != nil {
		return result, err
	}

	var raw []byte
	query := "select snapshot from sdocs.documents where document_id = $1"
	if err := d.pool.QueryRow(ctx, query, documentId).Scan(&raw); errors.Is(err, pgx.ErrNoRows) {
		return result, fmt.Errorf("no document %s: %w", documentId, AsDocumentError(err))
	} else if err != nil {
		return result, err
	} else if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("invalid snapshot for document %s: %w", documentId, err)
	}

	return result, nil
}

// SaveSnapshot inserts or replaces the snapshot of a document
func (d *Dao) SaveSnapshot(ctx context.Context, snapshot DocumentDTO) error {
	if err := d.ready(); err != nil {
		return err
	}

	raw, errJson := json.Marshal(snapshot)
	if errJson != nil {
		return errJson
	}

	_, errExec := d.pool.Exec(ctx, `
		insert into sdocs.documents(document_id, document_name, snapshot, saved_at)
		values ($1, $2, $3, $4)
		on conflict (document_id) do update 
		set document_name = excluded.document_name, snapshot = excluded.snapshot, saved_at = excluded.saved_at`,
		snapshot.Id, snapshot.Name, raw, serializeTimestamp(time.Now()),
	)

	return errExec
}

// RecordRun stores a mutation run and its outcomes, in a single transaction
func (d *Dao) RecordRun(ctx context.Context, documentId string, summary mutations.Summary) error {
	if err := d.ready(); err != nil {
		return err
	}

	tx, errTx := d.pool.Begin(ctx)
	if errTx != nil {
		return errTx
	}

	// no op once committed
	defer tx.Rollback(ctx)

	runError := ""
	if summary.Err != nil {
		runError = summary.Err.Error()
	}

	if _, err := tx.Exec(ctx, `
		insert into sdocs.runs(run_id, document_id, mutation, applied, skipped, failed, run_error, run_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		summary.RunId, documentId, summary.Mutation,
		summary.Applied, summary.Skipped, summary.Failed, runError,
		serializeTimestamp(time.Now()),
	); err != nil {
		return err
	}

	rows := make([][]any, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		rows = append(rows, []any{summary.RunId, int64(outcome.Element), outcome.Status.String(), outcome.Detail})
	}

	if len(rows) != 0 {
		columns := []string{"run_id", "element_id", "status", "detail"}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sdocs", "outcomes"}, columns, pgx.CopyFromRows(rows)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindRunOutcomes returns the stored outcomes of a run, by element id
func (d *Dao) FindRunOutcomes(ctx context.Context, runId string) ([]OutcomeDTO, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}

	rows, errQuery := d.pool.Query(ctx, "select element_id, status, detail from sdocs.outcomes where run_id = $1 order by element_id", runId)
	if errQuery != nil {
		return nil, errQuery
	}

	defer rows.Close()

	var result []OutcomeDTO
	var globalErr error
	for rows.Next() {
		var outcome OutcomeDTO
		if err := rows.Scan(&outcome.Element, &outcome.Status, &outcome.Detail); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			result = append(result, outcome)
		}
	}

	return result, errors.Join(globalErr, rows.Err())
}

// Close closes the dao and the underlying pool
func (d *Dao) Close() {
	if d != nil && d.pool != nil {
		d.pool.Close()
	}
}

// serializeTimestamp gets time value and returns it at the plpgsql format
func serializeTimestamp(t time.Time) string {
	return t.UTC().Format(DATE_STORAGE_FORMAT)
}
