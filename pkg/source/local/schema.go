package local

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/engine/schema"
)

// SchemaReader infers source schemas by sampling JSON-lines files.
type SchemaReader struct {
	Root string
}

func (s SchemaReader) ReadSchema(_ context.Context, tenant domain.TenantContext, connectionRef, sourcePath string, sampleSize int) ([]domain.FieldDefinition, []string, int, map[string][]any, error) {
	path, err := refPath(s.Root, tenant, filepath.Join(connectionRef, sourcePath))
	if err != nil {
		return nil, nil, 0, nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, 0, nil, domerr.Missing{Table: "source", Identity: sourcePath}
	}
	if os.IsPermission(err) {
		return nil, nil, 0, nil, domerr.ErrDenied
	}
	if err != nil {
		return nil, nil, 0, nil, err
	}

	rows, err := record.Decode(raw)
	if err != nil {
		return nil, nil, 0, nil, err
	}
	rowCount := len(rows)

	if sampleSize <= 0 {
		sampleSize = 100
	}
	sample := rows
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	fields := schema.Infer(sample)

	// a field named "id" present in every sampled row doubles as the key
	var primaryKeys []string
	for _, field := range fields {
		if field.Name == "id" && !field.Nullable {
			primaryKeys = append(primaryKeys, field.Name)
		}
	}

	samples := map[string][]any{}
	for _, field := range fields {
		for _, row := range sample {
			if len(samples[field.Name]) >= 3 {
				break
			}
			if value, ok := row[field.Name]; ok && value != nil {
				samples[field.Name] = append(samples[field.Name], value)
			}
		}
	}

	return fields, primaryKeys, rowCount, samples, nil
}
