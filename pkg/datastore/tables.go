package datastore

import "strings"

// Table name suffixes under an entity's shard directory.
const (
	suffixMeta            = "meta"
	suffixResults         = "results"
	suffixConfusionMatrix = "confusion_matrix/binarylabel"
	suffixRocAuc          = "roc_auc"
	suffixSummary         = "summary"
)

// shardPrefix is the fixed two-character sharding scheme applied to
// entity ids in table paths.
func shardPrefix(id string) string {
	if len(id) < 2 {
		return id
	}
	return id[:2]
}

// tableNameOf builds the canonical backend table path
// "project/<project>/<entity>/<id[0:2]>/<id>/<suffix>".
func tableNameOf(project, entity, id, suffix string) string {
	return strings.Join([]string{"project", project, entity, shardPrefix(id), id, suffix}, "/")
}

// TableNameOfDataset returns the meta table of a dataset version.
func TableNameOfDataset(project, datasetID string) string {
	return tableNameOf(project, "dataset", datasetID, suffixMeta)
}

// TableNameOfResult returns the per-record results table of an
// evaluation.
func TableNameOfResult(project, evaluationID string) string {
	return tableNameOf(project, "eval", evaluationID, suffixResults)
}

// TableNameOfConfusionMatrix returns the binary-label confusion matrix
// table of an evaluation.
func TableNameOfConfusionMatrix(project, evaluationID string) string {
	return tableNameOf(project, "eval", evaluationID, suffixConfusionMatrix)
}

// TableNameOfRocAuc returns the ROC/AUC table of an evaluation for one
// label.
func TableNameOfRocAuc(project, evaluationID, label string) string {
	return tableNameOf(project, "eval", evaluationID, suffixRocAuc+"/"+label)
}

// TableNameOfSummary returns the project-wide evaluation summary table.
func TableNameOfSummary(project string) string {
	return strings.Join([]string{"project", project, "eval", suffixSummary}, "/")
}

// IsSearchColumn reports whether a column is user-visible and eligible
// as a filter candidate. Columns are hidden when the name starts with
// "_", starts with "sys/_", or any "@"-delimited segment starts with
// "_".
func IsSearchColumn(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "sys/_") {
		return false
	}
	for _, segment := range strings.Split(name, "@") {
		if strings.HasPrefix(segment, "_") {
			return false
		}
	}
	return true
}

// IsBasicType reports whether t is eligible as a filter/sort target:
// numeric, string or boolean. Composite types and BYTES are excluded.
func IsBasicType(t DataType) bool {
	return t.IsNumeric() || t == TypeString || t == TypeBool
}
