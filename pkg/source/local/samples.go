package local

import (
	"context"
	"fmt"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/unit"
)

// Samples selects sample ids out of a stored dataset by matching
// criteria fields for equality.
type Samples struct {
	Storage unit.DatasetStorage
}

func (s Samples) Select(ctx context.Context, tenant domain.TenantContext, datasetRef string, criteria map[string]any) ([]string, error) {
	blob, err := s.Storage.ReadLocation(ctx, tenant, datasetRef)
	if err != nil {
		return nil, err
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return nil, err
	}

	var ids []string
	for i, row := range rows {
		if !matches(row, criteria) {
			continue
		}
		ids = append(ids, sampleID(row, i))
	}
	return ids, nil
}

func matches(row record.Row, criteria map[string]any) bool {
	for field, want := range criteria {
		if row[field] != want {
			return false
		}
	}
	return true
}

func sampleID(row record.Row, index int) string {
	for _, field := range []string{"sample_id", "id"} {
		if value, ok := row[field]; ok && value != nil {
			return fmt.Sprint(value)
		}
	}
	return fmt.Sprintf("row-%d", index)
}
