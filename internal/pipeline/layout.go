package pipeline

import (
	"path/filepath"

	"buildmsa/internal/config"
)

// LockFileName guards an output directory against concurrent drivers.
const LockFileName = ".buildmsa.lock"

// Layout holds every path a run reads or writes.
type Layout struct {
	Input      string
	OutputDir  string
	ScratchDir string

	NRTarget        string
	RedundantTarget string

	NRQueryDB       string
	NRResult        string
	ProfileDB       string
	RedundantResult string
	HitsFASTA       string
	AlignerInput    string
	AlignerOutput   string
	MSA             string
}

// NewLayout derives the artifact paths for input under cfg.
func NewLayout(cfg *config.Config, input string) Layout {
	out := cfg.Paths.OutputDir
	nr := cfg.Databases.NR
	red := cfg.Databases.Redundant
	return Layout{
		Input:           input,
		OutputDir:       out,
		ScratchDir:      cfg.Paths.ScratchDir,
		NRTarget:        cfg.DatabasePath(nr),
		RedundantTarget: cfg.DatabasePath(red),
		NRQueryDB:       filepath.Join(out, "query."+nr+".db"),
		NRResult:        filepath.Join(out, "query."+nr+".ali"),
		ProfileDB:       filepath.Join(out, "query."+red+".db"),
		RedundantResult: filepath.Join(out, "query."+red+".ali"),
		HitsFASTA:       filepath.Join(out, "query."+red+".fa"),
		AlignerInput:    filepath.Join(out, "clustalo.in.fa"),
		AlignerOutput:   filepath.Join(out, "clustalo.out.fa"),
		MSA:             filepath.Join(out, "msa.fa"),
	}
}

// Artifact returns the output path of stage name.
func (l Layout) Artifact(name string) string {
	switch name {
	case StageCreateNRDB:
		return l.NRQueryDB
	case StageSearchNR:
		return l.NRResult
	case StageProfileFromNR:
		return l.ProfileDB
	case StageSearchRedundant:
		return l.RedundantResult
	case StageExtractFASTA:
		return l.HitsFASTA
	case StageBuildMSAInput:
		return l.AlignerInput
	case StageRunAligner:
		return l.AlignerOutput
	case StageTrimMSA:
		return l.MSA
	}
	return ""
}

// LockPath is the run lock for the output directory.
func (l Layout) LockPath() string {
	return filepath.Join(l.OutputDir, LockFileName)
}
