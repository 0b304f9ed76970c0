package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"compass_backend/internal/action/transport"
	"compass_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	actionNotFoundMessage      = "action not found"
	actionAlreadyExistsMessage = "action already exists"

	// uniqueViolation is the Postgres error code for a unique constraint hit.
	uniqueViolation = "23505"
	// listOrderConstraint is the per-email order uniqueness constraint;
	// losing a race on it warrants a retry, not a duplicate-action conflict.
	listOrderConstraint = "uq_actions_email_list_order"

	// createAttempts bounds retries when two concurrent creates for the same
	// email compute the same MAX+1 order value.
	createAttempts = 3
)

const actionColumns = `id, email, action_type, category_code, question_code, stage, list_order,
	owner_email, owner_acknowledged, action_status, postpone_date, notes, invites, log,
	created_at, updated_at`

const listByEmailQuery = `
	SELECT ` + actionColumns + `
	FROM actions
	WHERE email = $1
	ORDER BY list_order ASC, id ASC`

const existsQuestionActionQuery = `
	SELECT EXISTS (
		SELECT 1 FROM actions
		WHERE email = $1 AND action_type = 'question'
			AND question_code = $2 AND stage = $3
			AND action_status <> 'Stage Changed'
	)`

const reorderItemQuery = `
	UPDATE actions SET list_order = $1, updated_at = now()
	WHERE id = $2 AND email = $3`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new action repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts the action with list_order computed as MAX+1 inside the
// insert transaction. Duplicate (email, code[, stage]) resolves to a Conflict
// through the partial unique indexes; an order-index race is retried.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Action, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		action, err := r.createOnce(ctx, p)
		if err == nil {
			return action, nil
		}
		if isListOrderCollision(err) {
			lastErr = err
			continue
		}
		if isUniqueViolation(err) {
			return Action{}, apperr.Conflict(actionAlreadyExistsMessage)
		}
		return Action{}, err
	}
	return Action{}, fmt.Errorf("create action: order contention not resolved: %w", lastErr)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint hit,
// unwrapping any fmt.Errorf layers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isListOrderCollision reports whether err is specifically the per-email
// order constraint: two concurrent creates computed the same MAX+1, which
// warrants a retry rather than a duplicate-action conflict.
func isListOrderCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
		pgErr.ConstraintName == listOrderConstraint
}

func (r *Repo) createOnce(ctx context.Context, p CreateParams) (Action, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Action{}, fmt.Errorf("begin create action: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextOrder int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(list_order), 0) + 1 FROM actions WHERE email = $1
	`, p.Email).Scan(&nextOrder)
	if err != nil {
		return Action{}, fmt.Errorf("next list order: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO actions (email, action_type, category_code, question_code, stage,
			list_order, action_status, log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+actionColumns,
		p.Email, p.Type, p.CategoryCode, p.QuestionCode, p.Stage,
		nextOrder, p.Status, p.LogEntry,
	)
	action, err := scanAction(row)
	if err != nil {
		return Action{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Action{}, err
	}
	return action, nil
}

// GetByID retrieves one action by id.
func (r *Repo) GetByID(ctx context.Context, id int64) (Action, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+actionColumns+` FROM actions WHERE id = $1`, id)
	action, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Action{}, apperr.NotFound(actionNotFoundMessage)
		}
		return Action{}, fmt.Errorf("get action by id: %w", err)
	}
	return action, nil
}

// ListByEmail returns the user's actions in stable list order.
func (r *Repo) ListByEmail(ctx context.Context, email string) ([]Action, error) {
	rows, err := r.pool.Query(ctx, listByEmailQuery, email)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// Reorder applies the batch in one transaction. The per-email order
// uniqueness constraint is deferred, so a permutation commits without
// transient collisions; any item not owned by the email aborts everything.
func (r *Repo) Reorder(ctx context.Context, email string, items []transport.ReorderItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		tag, err := tx.Exec(ctx, reorderItemQuery, item.Order, item.ActionID, email)
		if err != nil {
			return fmt.Errorf("reorder action %d: %w", item.ActionID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.Validation(fmt.Sprintf("action %d does not belong to this user", item.ActionID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return apperr.Validation("reorder produces duplicate positions")
		}
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// Delete hard-deletes an action.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM actions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(actionNotFoundMessage)
	}
	return nil
}

// ExistsQuestionAction reports whether a live question action exists for
// (email, code, stage).
func (r *Repo) ExistsQuestionAction(ctx context.Context, email, code string, stage int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, existsQuestionActionQuery, email, code, stage).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("question action exists: %w", err)
	}
	return exists, nil
}

// UpdateStatus sets the status label and appends to the audit log.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status, logEntry string) error {
	return r.update(ctx, id, `
		UPDATE actions SET action_status = $2, log = log || $3, updated_at = now()
		WHERE id = $1
	`, status, logEntry)
}

// UpdateOwner sets the owner email and appends to the audit log.
func (r *Repo) UpdateOwner(ctx context.Context, id int64, ownerEmail, logEntry string) error {
	return r.update(ctx, id, `
		UPDATE actions SET owner_email = $2, log = log || $3, updated_at = now()
		WHERE id = $1
	`, ownerEmail, logEntry)
}

// UpdateAcknowledged records owner acknowledgement and appends to the audit log.
func (r *Repo) UpdateAcknowledged(ctx context.Context, id int64, acknowledged bool, logEntry string) error {
	return r.update(ctx, id, `
		UPDATE actions SET owner_acknowledged = $2, log = log || $3, updated_at = now()
		WHERE id = $1
	`, acknowledged, logEntry)
}

// UpdateNotes replaces the notes and appends to the audit log.
func (r *Repo) UpdateNotes(ctx context.Context, id int64, notes, logEntry string) error {
	return r.update(ctx, id, `
		UPDATE actions SET notes = $2, log = log || $3, updated_at = now()
		WHERE id = $1
	`, notes, logEntry)
}

// UpdatePostpone sets the postpone date together with the status and appends
// to the audit log.
func (r *Repo) UpdatePostpone(ctx context.Context, id int64, date time.Time, status, logEntry string) error {
	return r.update(ctx, id, `
		UPDATE actions SET postpone_date = $2, action_status = $3, log = log || $4, updated_at = now()
		WHERE id = $1
	`, date, status, logEntry)
}

// UpdateInvites replaces the invites and appends to the audit log.
func (r *Repo) UpdateInvites(ctx context.Context, id int64, invites []transport.Invite, logEntry string) error {
	payload, err := json.Marshal(invites)
	if err != nil {
		return fmt.Errorf("marshal invites: %w", err)
	}
	return r.update(ctx, id, `
		UPDATE actions SET invites = $2, log = log || $3, updated_at = now()
		WHERE id = $1
	`, payload, logEntry)
}

func (r *Repo) update(ctx context.Context, id int64, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update action %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(actionNotFoundMessage)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAction(row rowScanner) (Action, error) {
	var a Action
	var invitesRaw []byte
	err := row.Scan(
		&a.ID, &a.Email, &a.Type, &a.CategoryCode, &a.QuestionCode, &a.Stage, &a.ListOrder,
		&a.OwnerEmail, &a.OwnerAcknowledged, &a.Status, &a.PostponeDate, &a.Notes, &invitesRaw, &a.Log,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Action{}, err
	}

	if len(invitesRaw) > 0 {
		if err := json.Unmarshal(invitesRaw, &a.Invites); err != nil {
			return Action{}, fmt.Errorf("decode invites for action %d: %w", a.ID, err)
		}
	}
	return a, nil
}
