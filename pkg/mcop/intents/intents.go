// Package intents maps the intents this domain accepts to ordered
// execution-unit plans.
package intents

// decomposition is the intent catalogue. Units of a plan run in the
// listed order; a failed unit stops the rest of its plan.
var decomposition = map[string][]string{
	"RegisterDataAsset":   {"DataAssetRegistrar"},
	"TestConnection":      {"ConnectionProbe"},
	"DiscoverSchema":      {"SchemaIntrospector"},
	"IngestData":          {"DataExtractor", "DataWriter", "LineageEdgeWriter"},
	"TransformData":       {"TransformExecutor", "DataWriter", "LineageEdgeWriter"},
	"MaterializeFeatures": {"FeatureComputer", "FeatureStoreWriter"},
	"RetrieveFeatures":    {"FeatureRetriever"},
	"ProfileData":         {"DataProfiler"},
	"ValidateSchema":      {"SchemaValidator"},
	"CommitDataVersion":   {"DataCommitter"},
	"BranchDataset":       {"BranchCreator"},
	"MergeDataBranches":   {"MergeComputer", "DataCommitter"},
	"ReplicateData":       {"DataReplicator"},
	"QueryLocality":       {"LocalitySignalGenerator"},
	"CreateLabelTask":     {"LabelTaskCreator"},
}

// Decompose resolves an intent name to its unit plan. ok is false for
// intents this domain does not accept.
func Decompose(intent string) (units []string, ok bool) {
	plan, ok := decomposition[intent]
	if !ok {
		return nil, false
	}
	// callers may mutate their copy
	units = make([]string, len(plan))
	copy(units, plan)
	return units, true
}

// Known lists the accepted intent names, unordered.
func Known() []string {
	known := make([]string, 0, len(decomposition))
	for intent := range decomposition {
		known = append(known, intent)
	}
	return known
}
