package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AssetDeclaration declares a data asset for registration. Tags are
// validated against the deployment's tag schema before the write.
type AssetDeclaration struct {
	AssetType          AssetType          `json:"asset_type"`
	Name               string             `json:"name"`
	Version            string             `json:"version"`
	Schema             json.RawMessage    `json:"schema_declaration"`
	StorageLocationRef string             `json:"storage_location_ref"`
	Classification     DataClassification `json:"classification"`
	Format             DataFormat         `json:"data_format"`
	OwnerRef           uuid.UUID          `json:"owner_ref"`
	Tags               map[string]string  `json:"tags,omitempty"`
}

// RegistrationResult is the outcome of registering an asset.
type RegistrationResult struct {
	AssetID      uuid.UUID `json:"asset_id"`
	CardRef      string    `json:"card_ref"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ConnectionProbeInput asks for a connectivity test of an external source.
type ConnectionProbeInput struct {
	ConnectionRef  string `json:"connection_ref"`
	CredentialRef  string `json:"credential_ref"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type ConnectionProbeResult struct {
	HealthStatus HealthStatus `json:"health_status"`
	LatencyMilli int          `json:"latency_ms"`
	ErrorDetails string       `json:"error_details,omitempty"`
	ProbedAt     time.Time    `json:"probed_at"`
}

type SchemaIntrospectionInput struct {
	ConnectionRef string `json:"connection_ref"`
	SourcePath    string `json:"source_path"`
	SampleSize    int    `json:"sample_size"`
}

// FieldDefinition describes one field of an introspected schema.
type FieldDefinition struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	IsKey    bool   `json:"is_key"`
}

type SchemaIntrospectionResult struct {
	Fields           []FieldDefinition `json:"fields"`
	PrimaryKeys      []string          `json:"primary_keys"`
	RowCountEstimate int               `json:"row_count_estimate"`
	SampleValues     map[string][]any  `json:"sample_values,omitempty"`
	IsTruncated      bool              `json:"is_truncated"`
	IntrospectedAt   time.Time         `json:"introspected_at"`
}

type DataExtractionInput struct {
	SourceConnectionRef string     `json:"source_connection_ref"`
	SourceQueryOrPath   string     `json:"source_query_or_path"`
	ExtractionOffset    int        `json:"extraction_offset"`
	ExtractionLimit     int        `json:"extraction_limit"`
	OutputFormat        DataFormat `json:"output_format"`
	TargetStagingRef    string     `json:"target_staging_ref"`
}

type DataExtractionResult struct {
	BytesExtracted int       `json:"bytes_extracted"`
	RowsExtracted  int       `json:"rows_extracted"`
	StagingRef     string    `json:"staging_ref"`
	WatermarkValue string    `json:"watermark_value,omitempty"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

type DataWriteInput struct {
	StagingRef       string          `json:"staging_ref"`
	TargetDatasetRef string          `json:"target_dataset_ref"`
	WriteMode        WriteMode       `json:"write_mode"`
	PartitionSpec    json.RawMessage `json:"partition_spec,omitempty"`
}

type DataWriteResult struct {
	BytesWritten   int       `json:"bytes_written"`
	RowsWritten    int       `json:"rows_written"`
	TargetLocation string    `json:"target_location"`
	WrittenAt      time.Time `json:"written_at"`
}

type TransformInput struct {
	InputDataRef     string          `json:"input_data_ref"`
	Definition       json.RawMessage `json:"transformation_definition"`
	Parameters       map[string]any  `json:"parameters,omitempty"`
	OutputStagingRef string          `json:"output_staging_ref"`
}

type TransformResult struct {
	RowsProcessed    int       `json:"rows_processed"`
	RowsOutput       int       `json:"rows_output"`
	OutputStagingRef string    `json:"output_staging_ref"`
	TransformHash    string    `json:"transformation_hash"`
	TransformedAt    time.Time `json:"transformed_at"`
}

type JoinInput struct {
	LeftInputRef     string   `json:"left_input_ref"`
	RightInputRef    string   `json:"right_input_ref"`
	JoinKeys         []string `json:"join_keys"`
	JoinType         JoinType `json:"join_type"`
	OutputStagingRef string   `json:"output_staging_ref"`
}

type JoinResult struct {
	RowsOutput       int       `json:"rows_output"`
	MatchedCount     int       `json:"matched_count"`
	UnmatchedLeft    int       `json:"unmatched_left"`
	UnmatchedRight   int       `json:"unmatched_right"`
	OutputStagingRef string    `json:"output_staging_ref"`
	JoinedAt         time.Time `json:"joined_at"`
}

type AggregationInput struct {
	InputDataRef     string            `json:"input_data_ref"`
	GroupByColumns   []string          `json:"group_by_columns"`
	Aggregations     map[string]string `json:"aggregations"`
	OutputStagingRef string            `json:"output_staging_ref"`
}

type AggregationResult struct {
	GroupsComputed   int       `json:"groups_computed"`
	OutputStagingRef string    `json:"output_staging_ref"`
	AggregatedAt     time.Time `json:"aggregated_at"`
}

type FeatureComputeInput struct {
	SourceDataRef        string    `json:"source_data_ref"`
	FeatureDefinitionRef string    `json:"feature_definition_ref"`
	EntityKeyColumns     []string  `json:"entity_key_columns"`
	TimeStart            time.Time `json:"time_start"`
	TimeEnd              time.Time `json:"time_end"`
	OutputStagingRef     string    `json:"output_staging_ref"`
}

type FeatureComputeResult struct {
	EntitiesComputed  int       `json:"entities_computed"`
	FeatureValueCount int       `json:"feature_values_count"`
	OutputStagingRef  string    `json:"output_staging_ref"`
	ComputedAt        time.Time `json:"computed_at"`
}

type FeatureStoreWriteInput struct {
	StagingRef    string    `json:"staging_ref"`
	FeatureSetRef string    `json:"feature_set_ref"`
	StoreType     StoreType `json:"store_type"`
	TTLSeconds    int       `json:"ttl_seconds"`
}

type FeatureStoreWriteResult struct {
	EntitiesWritten int       `json:"entities_written"`
	StoreLocation   string    `json:"store_location"`
	WrittenAt       time.Time `json:"written_at"`
}

type FeatureRetrieveInput struct {
	FeatureSetRef   string           `json:"feature_set_ref"`
	EntityKeys      []map[string]any `json:"entity_keys"`
	FeatureNames    []string         `json:"feature_names"`
	PointInTime     *time.Time       `json:"point_in_time,omitempty"`
	StorePreference StoreType        `json:"store_preference"`
}

// FeatureValue is a single retrieved feature value.
//
// IsMissing marks entities or features that are not materialized;
// StalenessSeconds is the age of the value at retrieval time.
type FeatureValue struct {
	EntityKey        map[string]any `json:"entity_key"`
	FeatureName      string         `json:"feature_name"`
	Value            any            `json:"value"`
	IsMissing        bool           `json:"is_missing"`
	StalenessSeconds int            `json:"staleness_seconds"`
}

type FeatureRetrieveResult struct {
	Values      []FeatureValue `json:"values"`
	RetrievedAt time.Time      `json:"retrieved_at"`
}

type ProfileInput struct {
	DatasetRef     string `json:"dataset_ref"`
	SampleSize     int    `json:"sample_size"`
	ProfilingDepth string `json:"profiling_depth"`
}

type ColumnStatistics struct {
	ColumnName    string   `json:"column_name"`
	NullCount     int      `json:"null_count"`
	DistinctCount int      `json:"distinct_count"`
	MinValue      any      `json:"min_value,omitempty"`
	MaxValue      any      `json:"max_value,omitempty"`
	MeanValue     *float64 `json:"mean_value,omitempty"`
}

// ProfileResult carries the computed statistics. LowConfidence marks
// profiles over samples too small to generalize from.
type ProfileResult struct {
	ColumnStats      []ColumnStatistics `json:"column_stats"`
	QualityScores    map[string]float64 `json:"quality_scores"`
	DetectedPatterns []string           `json:"detected_patterns"`
	LowConfidence    bool               `json:"low_confidence"`
	ProfiledAt       time.Time          `json:"profiled_at"`
}

type SchemaValidationInput struct {
	DatasetRef        string         `json:"dataset_ref"`
	ExpectedSchemaRef string         `json:"expected_schema_ref"`
	ValidationMode    ValidationMode `json:"validation_mode"`
}

type SchemaDiscrepancy struct {
	FieldName    string `json:"field_name"`
	ExpectedType string `json:"expected_type"`
	ActualType   string `json:"actual_type"`
	Issue        string `json:"issue"`
}

type SchemaValidationResult struct {
	IsValid       bool                `json:"is_valid"`
	Discrepancies []SchemaDiscrepancy `json:"discrepancies"`
	ValidatedAt   time.Time           `json:"validated_at"`
}

type CommitInput struct {
	DatasetRef      string    `json:"dataset_ref"`
	ParentCommitRef string    `json:"parent_commit_ref,omitempty"`
	CommitMessage   string    `json:"commit_message"`
	AuthorRef       uuid.UUID `json:"author_ref"`
}

type CommitResult struct {
	CommitID         string         `json:"commit_id"`
	ChangesetSummary map[string]int `json:"changeset_summary"`
	CommittedAt      time.Time      `json:"committed_at"`
}

type BranchInput struct {
	DatasetRef      string `json:"dataset_ref"`
	SourceCommitRef string `json:"source_commit_ref"`
	BranchName      string `json:"branch_name"`
}

type BranchResult struct {
	BranchID      uuid.UUID `json:"branch_id"`
	HeadCommitRef string    `json:"head_commit_ref"`
	CreatedAt     time.Time `json:"created_at"`
}

type MergeInput struct {
	SourceCommitRef   string `json:"source_commit_ref"`
	TargetCommitRef   string `json:"target_commit_ref"`
	CommonAncestorRef string `json:"common_ancestor_ref"`
}

type MergeConflictDetail struct {
	Path        string `json:"path"`
	SourceValue any    `json:"source_value"`
	TargetValue any    `json:"target_value"`
}

type MergeComputeResult struct {
	Outcome         MergeOutcome          `json:"result"`
	Conflicts       []MergeConflictDetail `json:"conflicts"`
	MergedChangeset json.RawMessage       `json:"merged_changeset,omitempty"`
	ComputedAt      time.Time             `json:"computed_at"`
}

type ReplicationInput struct {
	SourceLocationRef string          `json:"source_location_ref"`
	TargetLocationRef string          `json:"target_location_ref"`
	ConsistencyMode   ConsistencyMode `json:"consistency_mode"`
}

type ReplicationResult struct {
	BytesReplicated int       `json:"bytes_replicated"`
	TargetConfirmed string    `json:"target_confirmed"`
	ChecksumMatch   bool      `json:"checksum_match"`
	ReplicatedAt    time.Time `json:"replicated_at"`
}

// LocalitySignal estimates access cost of an asset from one environment.
type LocalitySignal struct {
	EnvironmentID        string       `json:"environment_id"`
	LocalityType         LocalityType `json:"locality_type"`
	TransferCostEstimate float64      `json:"transfer_cost_estimate"`
	Confidence           float64      `json:"confidence"`
}

// LocalityResult carries one signal per known environment.
// HasStaleSignals is set when any signal's confidence is low enough
// that a placement decision should not lean on it.
type LocalityResult struct {
	Signals         []LocalitySignal `json:"signals"`
	HasStaleSignals bool             `json:"has_stale_signals"`
	SignalFreshness time.Time        `json:"signal_freshness"`
}

type LabelTaskInput struct {
	SourceDatasetRef    string             `json:"source_dataset_ref"`
	SampleCriteria      map[string]any     `json:"sample_criteria"`
	LabelSchemaRef      string             `json:"label_schema_ref"`
	QualityRequirements map[string]float64 `json:"quality_requirements"`
}

type LabelTaskResult struct {
	TaskID      uuid.UUID `json:"task_id"`
	SampleCount int       `json:"sample_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type LabelRecordInput struct {
	TaskRef      string    `json:"task_ref"`
	SampleID     string    `json:"sample_id"`
	LabelValue   any       `json:"label_value"`
	AnnotatorRef uuid.UUID `json:"annotator_ref"`
}

type LabelRecordResult struct {
	AnnotationID uuid.UUID `json:"annotation_id"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type LineageEdgeInput struct {
	SourceAssetRef   string `json:"source_asset_ref"`
	TargetAssetRef   string `json:"target_asset_ref"`
	RelationshipType string `json:"relationship_type"`
	ExecutionRef     string `json:"execution_ref"`
}

type LineageEdgeResult struct {
	EdgeID    uuid.UUID `json:"edge_id"`
	CreatedAt time.Time `json:"created_at"`
}

type QualityGateInput struct {
	DatasetRef      string             `json:"dataset_ref"`
	QualityRulesRef string             `json:"quality_rules_ref"`
	Thresholds      map[string]float64 `json:"thresholds"`
}

type QualityViolation struct {
	RuleName string  `json:"rule_name"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
}

type QualityGateResult struct {
	Outcome      GateOutcome        `json:"result"`
	MetricValues map[string]float64 `json:"metric_values"`
	Violations   []QualityViolation `json:"violations"`
	EvaluatedAt  time.Time          `json:"evaluated_at"`
}
