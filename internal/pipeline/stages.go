package pipeline

import (
	"slices"
	"strings"

	"buildmsa/internal/services"
)

// Stage identifiers in execution order.
const (
	StageCreateNRDB      = "create_nr_db"
	StageSearchNR        = "search_nr"
	StageProfileFromNR   = "profile_from_nr"
	StageSearchRedundant = "search_redundant"
	StageExtractFASTA    = "extract_fasta"
	StageBuildMSAInput   = "build_msa_input"
	StageRunAligner      = "run_aligner"
	StageTrimMSA         = "trim_msa"
)

var stageOrder = []string{
	StageCreateNRDB,
	StageSearchNR,
	StageProfileFromNR,
	StageSearchRedundant,
	StageExtractFASTA,
	StageBuildMSAInput,
	StageRunAligner,
	StageTrimMSA,
}

// coveredBy lists stages that need not run once the key stage is complete.
var coveredBy = map[string][]string{
	StageProfileFromNR: {StageCreateNRDB, StageSearchNR},
}

// Stages returns the stage identifiers in execution order.
func Stages() []string {
	return slices.Clone(stageOrder)
}

// ParseStage validates a stage identifier. Hyphens are accepted in place of
// underscores.
func ParseStage(value string) (string, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	if slices.Contains(stageOrder, name) {
		return name, nil
	}
	return "", services.Wrap(services.ErrUsage, "pipeline", "parse stage",
		"unknown stage "+value+" (want one of "+strings.Join(stageOrder, ", ")+")", nil)
}

func ordinal(name string) int {
	return slices.Index(stageOrder, name)
}
