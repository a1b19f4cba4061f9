package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Reader pulls rows from JSON-lines files under the source root. The
// connection ref is a directory, queryOrPath a file inside it.
type Reader struct {
	Root string
}

func (r Reader) Read(_ context.Context, tenant domain.TenantContext, connectionRef, queryOrPath string, offset, limit int) ([]record.Row, string, error) {
	path, err := refPath(r.Root, tenant, filepath.Join(connectionRef, queryOrPath))
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", domerr.Missing{Table: "source", Identity: queryOrPath}
	}
	if err != nil {
		return nil, "", err
	}

	rows, err := record.Decode(raw)
	if err != nil {
		return nil, "", err
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	watermark := fmt.Sprintf("row:%d", end)
	return rows[offset:end], watermark, nil
}
