package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/intent/db"
)

type intentPG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) db.Interface {
	return &intentPG{pool: pool}
}

var _ db.Interface = &intentPG{}

func (i *intentPG) Submit(ctx context.Context, tenant domain.TenantContext, name string, inputs json.RawMessage, traceID string, units []string) (db.Intent, []db.Execution, error) {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return db.Intent{}, nil, pgclass.Classify(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return db.Intent{}, nil, pgclass.Classify(err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	intent := db.Intent{
		IntentID:    uuid.New(),
		Name:        name,
		Inputs:      inputs,
		Tenant:      tenant,
		TraceID:     traceID,
		Status:      db.Queued,
		SubmittedAt: now,
	}

	_, err = tx.Exec(
		ctx,
		`
		insert into "intent" (
			"intent_id", "org_id", "workspace_id", "user_id",
			"name", "inputs", "trace_id", "status", "submitted_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
		intent.IntentID, tenant.OrganizationID, tenant.WorkspaceID, tenant.UserID,
		intent.Name, intent.Inputs, intent.TraceID, string(intent.Status), intent.SubmittedAt,
	)
	if err != nil {
		return db.Intent{}, nil, pgclass.Classify(err)
	}

	executions := make([]db.Execution, 0, len(units))
	for seq, unit := range units {
		exe := db.Execution{
			ExecutionID: uuid.New(),
			IntentID:    intent.IntentID,
			Unit:        unit,
			Seq:         seq,
			Status:      db.Queued,
			TraceID:     traceID,
			Tenant:      tenant,
			UpdatedAt:   now,
		}
		_, err := tx.Exec(
			ctx,
			`
			insert into "execution" (
				"execution_id", "intent_id", "unit", "seq",
				"status", "trace_id", "updated_at"
			) values ($1, $2, $3, $4, $5, $6, $7)
			`,
			exe.ExecutionID, exe.IntentID, exe.Unit, exe.Seq,
			string(exe.Status), exe.TraceID, exe.UpdatedAt,
		)
		if err != nil {
			return db.Intent{}, nil, pgclass.Classify(err)
		}
		executions = append(executions, exe)
	}

	if err := tx.Commit(ctx); err != nil {
		return db.Intent{}, nil, pgclass.Classify(err)
	}
	return intent, executions, nil
}

func (i *intentPG) GetIntent(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) (db.Intent, error) {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return db.Intent{}, pgclass.Classify(err)
	}
	defer conn.Release()

	intent, err := getIntent(ctx, conn, tenant, intentID)
	if err != nil {
		return db.Intent{}, err
	}
	return intent, nil
}

func getIntent(ctx context.Context, q kpool.Queryer, tenant domain.TenantContext, intentID uuid.UUID) (db.Intent, error) {
	var (
		intent db.Intent
		status string
	)
	err := q.QueryRow(
		ctx,
		`
		select
			"intent_id", "org_id", "workspace_id", "user_id",
			"name", "inputs", "trace_id", "status", "submitted_at"
		from "intent"
		where "intent_id" = $1 and "org_id" = $2 and "workspace_id" = $3
		`,
		intentID, tenant.OrganizationID, tenant.WorkspaceID,
	).Scan(
		&intent.IntentID, &intent.Tenant.OrganizationID, &intent.Tenant.WorkspaceID, &intent.Tenant.UserID,
		&intent.Name, &intent.Inputs, &intent.TraceID, &status, &intent.SubmittedAt,
	)
	if err == pgx.ErrNoRows {
		return db.Intent{}, domerr.Missing{Table: "intent", Identity: intentID.String()}
	}
	if err != nil {
		return db.Intent{}, pgclass.Classify(err)
	}
	intent.Status = db.Status(status)
	return intent, nil
}

func (i *intentPG) GetExecution(ctx context.Context, tenant domain.TenantContext, executionID uuid.UUID) (db.Execution, error) {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return db.Execution{}, pgclass.Classify(err)
	}
	defer conn.Release()

	row := conn.QueryRow(
		ctx,
		`
		select
			e."execution_id", e."intent_id", e."unit", e."seq",
			e."status", e."result", e."failure", e."trace_id",
			i."org_id", i."workspace_id", i."user_id", e."updated_at"
		from "execution" as e
		inner join "intent" as i on i."intent_id" = e."intent_id"
		where e."execution_id" = $1
			and i."org_id" = $2 and i."workspace_id" = $3
		`,
		executionID, tenant.OrganizationID, tenant.WorkspaceID,
	)
	exe, err := scanExecution(row)
	if err == pgx.ErrNoRows {
		return db.Execution{}, domerr.Missing{Table: "execution", Identity: executionID.String()}
	}
	if err != nil {
		return db.Execution{}, pgclass.Classify(err)
	}
	return exe, nil
}

func (i *intentPG) ListExecutions(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) ([]db.Execution, error) {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select
			e."execution_id", e."intent_id", e."unit", e."seq",
			e."status", e."result", e."failure", e."trace_id",
			i."org_id", i."workspace_id", i."user_id", e."updated_at"
		from "execution" as e
		inner join "intent" as i on i."intent_id" = e."intent_id"
		where e."intent_id" = $1
			and i."org_id" = $2 and i."workspace_id" = $3
		order by e."seq"
		`,
		intentID, tenant.OrganizationID, tenant.WorkspaceID,
	)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer rows.Close()

	executions := []db.Execution{}
	for rows.Next() {
		exe, err := scanExecution(rows)
		if err != nil {
			return nil, pgclass.Classify(err)
		}
		executions = append(executions, exe)
	}
	return executions, rows.Err()
}

// PickQueued claims without a lease: an execution whose dispatcher
// dies before Finish stays running until an operator requeues it.
// Retry orchestration is the caller platform's concern.
func (i *intentPG) PickQueued(ctx context.Context) (db.Execution, db.Intent, bool, error) {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}
	defer tx.Rollback(ctx)

	// An execution is runnable when it is the lowest-seq non-terminal
	// execution of its intent and still queued.
	row := tx.QueryRow(
		ctx,
		`
		select
			e."execution_id", e."intent_id", e."unit", e."seq",
			e."status", e."result", e."failure", e."trace_id",
			i."org_id", i."workspace_id", i."user_id", e."updated_at"
		from "execution" as e
		inner join "intent" as i on i."intent_id" = e."intent_id"
		where e."status" = 'queued'
			and not exists (
				select 1 from "execution" as p
				where p."intent_id" = e."intent_id"
					and p."seq" < e."seq"
					and p."status" != 'succeeded'
			)
		order by i."submitted_at", e."seq"
		limit 1
		for update of e skip locked
		`,
	)
	exe, err := scanExecution(row)
	if err == pgx.ErrNoRows {
		return db.Execution{}, db.Intent{}, false, nil
	}
	if err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(
		ctx,
		`update "execution" set "status" = 'running', "updated_at" = $2 where "execution_id" = $1`,
		exe.ExecutionID, now,
	); err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}
	if _, err := tx.Exec(
		ctx,
		`update "intent" set "status" = 'running' where "intent_id" = $1 and "status" = 'queued'`,
		exe.IntentID,
	); err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}

	intent, err := getIntent(ctx, tx, exe.Tenant, exe.IntentID)
	if err != nil {
		return db.Execution{}, db.Intent{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return db.Execution{}, db.Intent{}, false, pgclass.Classify(err)
	}
	exe.Status = db.Running
	exe.UpdatedAt = now
	return exe, intent, true, nil
}

func (i *intentPG) Finish(ctx context.Context, executionID uuid.UUID, result json.RawMessage, failure *db.Failure) error {
	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return pgclass.Classify(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return pgclass.Classify(err)
	}
	defer tx.Rollback(ctx)

	status := db.Succeeded
	var failureJSON []byte
	if failure != nil {
		status = db.Failed
		failureJSON, err = json.Marshal(failure)
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	var intentID uuid.UUID
	err = tx.QueryRow(
		ctx,
		`
		update "execution"
		set "status" = $2, "result" = $3, "failure" = $4, "updated_at" = $5
		where "execution_id" = $1 and "status" = 'running'
		returning "intent_id"
		`,
		executionID, string(status), result, failureJSON, now,
	).Scan(&intentID)
	if err == pgx.ErrNoRows {
		return domerr.Missing{Table: "execution", Identity: executionID.String()}
	}
	if err != nil {
		return pgclass.Classify(err)
	}

	if failure != nil {
		// Short-circuit: the rest of the intent never runs.
		if _, err := tx.Exec(
			ctx,
			`
			update "execution"
			set "status" = 'failed', "failure" = $2, "updated_at" = $3
			where "intent_id" = $1 and "status" = 'queued'
			`,
			intentID, failureJSON, now,
		); err != nil {
			return pgclass.Classify(err)
		}
		if _, err := tx.Exec(
			ctx,
			`update "intent" set "status" = 'failed' where "intent_id" = $1`,
			intentID,
		); err != nil {
			return pgclass.Classify(err)
		}
	} else {
		if _, err := tx.Exec(
			ctx,
			`
			update "intent" set "status" = 'succeeded'
			where "intent_id" = $1
				and not exists (
					select 1 from "execution"
					where "intent_id" = $1 and "status" != 'succeeded'
				)
			`,
			intentID,
		); err != nil {
			return pgclass.Classify(err)
		}
	}

	return tx.Commit(ctx)
}

func scanExecution(row pgx.Row) (db.Execution, error) {
	var (
		exe         db.Execution
		status      string
		failureJSON []byte
	)
	err := row.Scan(
		&exe.ExecutionID, &exe.IntentID, &exe.Unit, &exe.Seq,
		&status, &exe.Result, &failureJSON, &exe.TraceID,
		&exe.Tenant.OrganizationID, &exe.Tenant.WorkspaceID, &exe.Tenant.UserID, &exe.UpdatedAt,
	)
	if err != nil {
		return db.Execution{}, err
	}
	exe.Status = db.Status(status)
	if len(failureJSON) != 0 {
		f := &db.Failure{}
		if err := json.Unmarshal(failureJSON, f); err != nil {
			return db.Execution{}, err
		}
		exe.Failure = f
	}
	return exe, nil
}
