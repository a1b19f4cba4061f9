package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func tenantFixture() domain.TenantContext {
	return domain.TenantContext{
		OrganizationID: uuid.MustParse("7cc1e2af-66d1-4f40-8a2e-1f9b44cc0001"),
		WorkspaceID:    uuid.MustParse("7cc1e2af-66d1-4f40-8a2e-1f9b44cc0002"),
		UserID:         uuid.MustParse("7cc1e2af-66d1-4f40-8a2e-1f9b44cc0003"),
	}
}

func tenantDir(t *testing.T, root string, tenant domain.TenantContext) string {
	t.Helper()
	dir := filepath.Join(root, tenant.OrganizationID.String(), tenant.WorkspaceID.String())
	try.To(0, os.MkdirAll(dir, 0o750)).OrFatal(t)
	return dir
}

func TestRefPath(t *testing.T) {
	tenant := tenantFixture()

	t.Run("refs resolve under the tenant directory", func(t *testing.T) {
		got := try.To(refPath("/srv/data", tenant, "datasets/orders")).OrFatal(t)
		want := filepath.Join(
			"/srv/data",
			tenant.OrganizationID.String(),
			tenant.WorkspaceID.String(),
			"datasets/orders",
		)
		if got != want {
			t.Errorf("path: got %s, want %s", got, want)
		}
	})

	t.Run("the file scheme prefix is stripped", func(t *testing.T) {
		withScheme := try.To(refPath("/srv/data", tenant, "file://datasets/orders")).OrFatal(t)
		bare := try.To(refPath("/srv/data", tenant, "datasets/orders")).OrFatal(t)
		if withScheme != bare {
			t.Errorf("paths differ: %s vs %s", withScheme, bare)
		}
	})

	t.Run("traversal and absolute refs are rejected", func(t *testing.T) {
		for _, ref := range []string{"../other-tenant/data", "a/../../escape", "/etc/passwd"} {
			if _, err := refPath("/srv/data", tenant, ref); err == nil {
				t.Errorf("ref %q should be rejected", ref)
			}
		}
	})
}

func TestReader(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("rows page by offset and limit with a watermark", func(t *testing.T) {
		root := t.TempDir()
		dir := tenantDir(t, root, tenant)
		try.To(0, os.MkdirAll(filepath.Join(dir, "conn"), 0o750)).OrFatal(t)
		try.To(0, os.WriteFile(
			filepath.Join(dir, "conn", "orders.jsonl"),
			[]byte("{\"id\": 1}\n{\"id\": 2}\n{\"id\": 3}\n"), 0o640,
		)).OrFatal(t)

		testee := Reader{Root: root}
		rows, watermark, err := testee.Read(ctx, tenant, "conn", "orders.jsonl", 1, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 || rows[0]["id"] != float64(2) {
			t.Errorf("rows: %+v", rows)
		}
		if watermark != "row:2" {
			t.Errorf("watermark: %s", watermark)
		}
	})

	t.Run("a missing file is a missing source", func(t *testing.T) {
		testee := Reader{Root: t.TempDir()}
		_, _, err := testee.Read(ctx, tenant, "conn", "nope.jsonl", 0, 0)
		if !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("error: %v", err)
		}
	})
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("append mode grows the location, overwrite replaces it", func(t *testing.T) {
		testee := Storage{Root: t.TempDir()}

		ref := try.To(testee.WriteLocation(ctx, tenant, "ds/orders", []byte("{\"id\": 1}\n"), domain.WriteOverwrite)).OrFatal(t)
		try.To(testee.WriteLocation(ctx, tenant, ref, []byte("{\"id\": 2}\n"), domain.WriteAppend)).OrFatal(t)

		appended := try.To(testee.ReadLocation(ctx, tenant, ref)).OrFatal(t)
		if string(appended) != "{\"id\": 1}\n{\"id\": 2}\n" {
			t.Errorf("content after append: %s", appended)
		}

		try.To(testee.WriteLocation(ctx, tenant, ref, []byte("{\"id\": 9}\n"), domain.WriteOverwrite)).OrFatal(t)
		replaced := try.To(testee.ReadLocation(ctx, tenant, ref)).OrFatal(t)
		if string(replaced) != "{\"id\": 9}\n" {
			t.Errorf("content after overwrite: %s", replaced)
		}
	})

	t.Run("a missing location is a missing error", func(t *testing.T) {
		testee := Storage{Root: t.TempDir()}
		if _, err := testee.ReadLocation(ctx, tenant, "ds/nope"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("error: %v", err)
		}
	})
}

func TestSamples(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("criteria filter rows and ids fall back to the row index", func(t *testing.T) {
		storage := Storage{Root: t.TempDir()}
		blob := []byte(
			"{\"sample_id\": \"s-1\", \"split\": \"train\"}\n" +
				"{\"id\": 42, \"split\": \"test\"}\n" +
				"{\"split\": \"train\"}\n",
		)
		try.To(storage.WriteLocation(ctx, tenant, "ds/samples", blob, domain.WriteOverwrite)).OrFatal(t)

		testee := Samples{Storage: storage}
		ids := try.To(testee.Select(ctx, tenant, "ds/samples", map[string]any{"split": "train"})).OrFatal(t)
		if len(ids) != 2 || ids[0] != "s-1" || ids[1] != "row-2" {
			t.Errorf("ids: %v", ids)
		}
	})
}

func TestLabelSchemas(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	writeSchema := func(t *testing.T, root, ref, body string) {
		t.Helper()
		dir := tenantDir(t, root, tenant)
		try.To(0, os.WriteFile(filepath.Join(dir, ref), []byte(body), 0o640)).OrFatal(t)
	}

	t.Run("classification labels must be schema classes", func(t *testing.T) {
		root := t.TempDir()
		writeSchema(t, root, "sentiment.json", `{"kind": "classification", "classes": ["positive", "negative"]}`)

		testee := LabelSchemas{Root: root}
		try.To(0, testee.ValidateSchema(ctx, tenant, "sentiment.json")).OrFatal(t)
		try.To(0, testee.ValidateLabel(ctx, tenant, "sentiment.json", "positive")).OrFatal(t)
		if err := testee.ValidateLabel(ctx, tenant, "sentiment.json", "meh"); err == nil {
			t.Error("off-schema class should fail")
		}
		if err := testee.ValidateLabel(ctx, tenant, "sentiment.json", 1.0); err == nil {
			t.Error("non-string label should fail")
		}
	})

	t.Run("numeric labels honor min and max", func(t *testing.T) {
		root := t.TempDir()
		writeSchema(t, root, "stars.json", `{"kind": "numeric", "min": 1, "max": 5}`)

		testee := LabelSchemas{Root: root}
		try.To(0, testee.ValidateLabel(ctx, tenant, "stars.json", 3.0)).OrFatal(t)
		if err := testee.ValidateLabel(ctx, tenant, "stars.json", 6.0); err == nil {
			t.Error("out-of-range label should fail")
		}
	})

	t.Run("a classification schema without classes is invalid", func(t *testing.T) {
		root := t.TempDir()
		writeSchema(t, root, "empty.json", `{"kind": "classification"}`)

		testee := LabelSchemas{Root: root}
		if err := testee.ValidateSchema(ctx, tenant, "empty.json"); err == nil {
			t.Error("schema should be invalid")
		}
	})

	t.Run("an unknown kind is invalid", func(t *testing.T) {
		root := t.TempDir()
		writeSchema(t, root, "odd.json", `{"kind": "ranking"}`)

		testee := LabelSchemas{Root: root}
		if err := testee.ValidateSchema(ctx, tenant, "odd.json"); err == nil {
			t.Error("schema should be invalid")
		}
	})
}
