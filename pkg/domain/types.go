// Package domain holds the core types of the Data Fabric domain:
// tenant scoping, asset metadata and the input/output contracts of the
// execution units.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const Domain = "data-fabric"

// TenantContext scopes every operation to an organization, a workspace
// and the acting user. It is immutable and passed explicitly.
type TenantContext struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	WorkspaceID    uuid.UUID `json:"workspace_id"`
	UserID         uuid.UUID `json:"user_id"`
}

func (t TenantContext) String() string {
	return fmt.Sprintf("%s/%s", t.OrganizationID, t.WorkspaceID)
}

// AssetType enumerates data asset types owned by this domain.
type AssetType string

const (
	AssetDataset    AssetType = "dataset"
	AssetFeatureSet AssetType = "feature_set"
	AssetLabelSet   AssetType = "label_set"
)

func (a AssetType) Valid() bool {
	switch a {
	case AssetDataset, AssetFeatureSet, AssetLabelSet:
		return true
	}
	return false
}

// DataFormat enumerates supported data formats.
type DataFormat string

const (
	FormatParquet DataFormat = "parquet"
	FormatDelta   DataFormat = "delta"
	FormatIceberg DataFormat = "iceberg"
	FormatCSV     DataFormat = "csv"
	FormatJSON    DataFormat = "json"
	FormatAvro    DataFormat = "avro"
)

func (f DataFormat) Valid() bool {
	switch f {
	case FormatParquet, FormatDelta, FormatIceberg, FormatCSV, FormatJSON, FormatAvro:
		return true
	}
	return false
}

// DataClassification enumerates classification levels.
type DataClassification string

const (
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationRestricted   DataClassification = "restricted"
	ClassificationPII          DataClassification = "pii"
)

func (c DataClassification) Valid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential,
		ClassificationRestricted, ClassificationPII:
		return true
	}
	return false
}

// HealthStatus is the result of a connection probe.
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

// WriteMode selects how staged data lands in a dataset.
type WriteMode string

const (
	WriteAppend    WriteMode = "append"
	WriteOverwrite WriteMode = "overwrite"
)

func (w WriteMode) Valid() bool {
	return w == WriteAppend || w == WriteOverwrite
}

// JoinType enumerates join flavours.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

func (j JoinType) Valid() bool {
	switch j {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
		return true
	}
	return false
}

// StoreType selects the feature store side.
type StoreType string

const (
	StoreOffline StoreType = "offline"
	StoreOnline  StoreType = "online"
)

func (s StoreType) Valid() bool {
	return s == StoreOffline || s == StoreOnline
}

// ValidationMode selects how strict schema validation is.
type ValidationMode string

const (
	ValidateExact      ValidationMode = "exact"
	ValidateCompatible ValidationMode = "compatible"
	ValidateSubset     ValidationMode = "subset"
)

func (v ValidationMode) Valid() bool {
	switch v {
	case ValidateExact, ValidateCompatible, ValidateSubset:
		return true
	}
	return false
}

// ConsistencyMode selects replication consistency.
type ConsistencyMode string

const (
	ConsistencyEventual ConsistencyMode = "eventual"
	ConsistencyStrong   ConsistencyMode = "strong"
)

func (c ConsistencyMode) Valid() bool {
	return c == ConsistencyEventual || c == ConsistencyStrong
}

// MergeOutcome is the verdict of a merge computation.
type MergeOutcome string

const (
	MergeSuccess  MergeOutcome = "success"
	MergeConflict MergeOutcome = "conflict"
)

// GateOutcome is the verdict of a quality gate.
type GateOutcome string

const (
	GatePass         GateOutcome = "pass"
	GateFail         GateOutcome = "fail"
	GateInconclusive GateOutcome = "inconclusive"
)

// LocalityType describes where an asset is relative to an environment.
type LocalityType string

const (
	LocalityLocal       LocalityType = "local"
	LocalityCached      LocalityType = "cached"
	LocalityRemote      LocalityType = "remote"
	LocalityUnavailable LocalityType = "unavailable"
)
