package unit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/join"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// DataJoiner joins two staged row sets on key equality.
type DataJoiner struct {
	Staging staging.Store
}

func (DataJoiner) Name() string {
	return "DataJoiner"
}

func (u DataJoiner) Execute(ctx context.Context, tenant domain.TenantContext, in domain.JoinInput) (domain.JoinResult, error) {
	if len(in.JoinKeys) == 0 {
		return domain.JoinResult{}, Errorf("KEY_MISMATCH", "join_keys must not be empty")
	}
	if !in.JoinType.Valid() {
		return domain.JoinResult{}, Errorf("VALIDATION_FAILED", "unknown join type %q", in.JoinType)
	}

	left, err := u.readRows(ctx, tenant, in.LeftInputRef, "LEFT_INPUT_READ_FAILURE")
	if err != nil {
		return domain.JoinResult{}, err
	}
	right, err := u.readRows(ctx, tenant, in.RightInputRef, "RIGHT_INPUT_READ_FAILURE")
	if err != nil {
		return domain.JoinResult{}, err
	}

	// a key column absent from either side is a contract violation,
	// not just an empty match
	for _, key := range in.JoinKeys {
		if !hasColumn(left, key) || !hasColumn(right, key) {
			return domain.JoinResult{}, Errorf("KEY_MISMATCH", "join key %q missing from an input", key)
		}
	}

	out, stats, err := join.Run(left, right, in.JoinKeys, in.JoinType)
	if err != nil {
		return domain.JoinResult{}, coded(err, "KEY_MISMATCH")
	}

	blob, err := record.Encode(out)
	if err != nil {
		return domain.JoinResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}
	if err := u.Staging.Write(ctx, tenant, in.OutputStagingRef, blob); err != nil {
		return domain.JoinResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}

	return domain.JoinResult{
		RowsOutput:       len(out),
		MatchedCount:     stats.Matched,
		UnmatchedLeft:    stats.UnmatchedLeft,
		UnmatchedRight:   stats.UnmatchedRight,
		OutputStagingRef: in.OutputStagingRef,
		JoinedAt:         time.Now().UTC(),
	}, nil
}

func (u DataJoiner) readRows(ctx context.Context, tenant domain.TenantContext, ref, failureCode string) ([]record.Row, error) {
	blob, err := u.Staging.Read(ctx, tenant, ref)
	if err != nil {
		return nil, coded(err, failureCode)
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return nil, coded(err, failureCode)
	}
	return rows, nil
}

func hasColumn(rows []record.Row, name string) bool {
	if len(rows) == 0 {
		return true
	}
	for _, row := range rows {
		if _, ok := row[name]; ok {
			return true
		}
	}
	return false
}

func (u DataJoiner) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.JoinInput](inputs, "join_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
