package config

const (
	defaultDatabaseRoot     = "~/uniref"
	defaultNRDatabase       = "uniref50"
	defaultRedundantDB      = "uniref100"
	defaultOutputDir        = "./"
	defaultScratchDir       = "/tmp/"
	defaultThreads          = 32
	defaultSplitMemoryLimit = "250000000000"
	defaultNRIterations     = 4
	defaultMaxSeqs          = 1000000
	defaultSensitivity      = 7.5
	defaultMaxSeqID         = 0.999
	defaultMaxSequences     = 10000
	defaultVerify           = VerifySHA256
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Checkpoint verification modes.
const (
	VerifyExists = "exists"
	VerifySize   = "size"
	VerifySHA256 = "sha256"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			MMseqsPath:   "mmseqs",
			ClustaloPath: "clustalo",
		},
		Databases: Databases{
			Root:      defaultDatabaseRoot,
			NR:        defaultNRDatabase,
			Redundant: defaultRedundantDB,
		},
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			ScratchDir: defaultScratchDir,
		},
		Search: Search{
			Threads:          defaultThreads,
			SplitMemoryLimit: defaultSplitMemoryLimit,
			NRIterations:     defaultNRIterations,
			MaxSeqs:          defaultMaxSeqs,
			Sensitivity:      defaultSensitivity,
			MaxSeqID:         defaultMaxSeqID,
		},
		Aligner: Aligner{
			Threads: defaultThreads,
		},
		Collect: Collect{
			MaxSequences: defaultMaxSequences,
		},
		Checkpoint: Checkpoint{
			Verify:         defaultVerify,
			AdoptUntracked: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
