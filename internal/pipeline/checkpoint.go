package pipeline

import (
	"context"
	"fmt"

	"buildmsa/internal/config"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/manifest"
	"buildmsa/internal/services"
)

type decision struct {
	skip   bool
	reason string
}

func runStage(reason string) decision  { return decision{reason: reason} }
func skipStage(reason string) decision { return decision{skip: true, reason: reason} }

// evaluate decides whether s can be skipped. Artifacts that cannot be trusted
// are removed so the stage starts from a clean slate.
func (d *Driver) evaluate(ctx context.Context, store *manifest.Store, s *step) (decision, error) {
	cp, err := store.Get(ctx, s.name)
	if err != nil {
		return decision{}, services.Wrap(services.ErrIO, s.name, "read checkpoint", "", err)
	}
	if cp != nil && cp.Artifact != s.artifact {
		// The row belongs to another database's artifact; this path is untracked.
		cp = nil
	}
	present := fileutil.Exists(s.artifact)

	if cp != nil && cp.Status == manifest.StatusRunning {
		// A running row outliving its process means the artifact may be half written.
		if err := d.removeStale(ctx, s, "interrupted by an earlier run "+cp.RunID); err != nil {
			return decision{}, err
		}
		return runStage("interrupted"), nil
	}
	if !present {
		// Companion files of a missing database would confuse the tool.
		if err := d.removeStale(ctx, s, "artifact missing"); err != nil {
			return decision{}, err
		}
		return runStage("missing"), nil
	}

	if cp == nil {
		if !d.cfg.Checkpoint.AdoptUntracked {
			if err := d.removeStale(ctx, s, "untracked artifact"); err != nil {
				return decision{}, err
			}
			return runStage("untracked"), nil
		}
		if err := d.adopt(ctx, store, s); err != nil {
			return decision{}, err
		}
		return skipStage("adopted"), nil
	}

	if cp.Status != manifest.StatusCompleted {
		if err := d.removeStale(ctx, s, "checkpoint "+string(cp.Status)); err != nil {
			return decision{}, err
		}
		return runStage(string(cp.Status)), nil
	}

	ok, detail, err := d.verify(ctx, store, s, cp)
	if err != nil {
		return decision{}, err
	}
	if !ok {
		if err := d.removeStale(ctx, s, detail); err != nil {
			return decision{}, err
		}
		return runStage("fingerprint changed"), nil
	}
	return skipStage("verified " + d.cfg.Checkpoint.Verify), nil
}

func (d *Driver) verify(ctx context.Context, store *manifest.Store, s *step, cp *manifest.Checkpoint) (bool, string, error) {
	mode := d.cfg.Checkpoint.Verify
	if mode == config.VerifyExists {
		return true, "", nil
	}
	size, err := fileutil.Size(s.artifact)
	if err != nil {
		return false, "", services.Wrap(services.ErrIO, s.name, "verify checkpoint", s.artifact, err)
	}
	if size != cp.SizeBytes {
		return false, mismatch("size", cp.SizeBytes, size), nil
	}
	if mode == config.VerifySize {
		return true, "", nil
	}

	_, digest, err := fileutil.Fingerprint(s.artifact)
	if err != nil {
		return false, "", services.Wrap(services.ErrIO, s.name, "verify checkpoint", s.artifact, err)
	}
	if cp.SHA256 == "" {
		// Recorded under a weaker mode; the size matched, so backfill the digest.
		if err := store.MarkCompleted(ctx, s.name, size, digest); err != nil {
			return false, "", services.Wrap(services.ErrIO, s.name, "backfill digest", "", err)
		}
		return true, "", nil
	}
	if digest != cp.SHA256 {
		return false, mismatch("sha256", cp.SHA256, digest), nil
	}
	return true, "", nil
}

func (d *Driver) adopt(ctx context.Context, store *manifest.Store, s *step) error {
	var (
		size   int64
		digest string
		err    error
	)
	if d.cfg.Checkpoint.Verify == config.VerifySHA256 {
		size, digest, err = fileutil.Fingerprint(s.artifact)
	} else {
		size, err = fileutil.Size(s.artifact)
	}
	if err != nil {
		return services.Wrap(services.ErrIO, s.name, "adopt artifact", s.artifact, err)
	}
	err = store.Put(ctx, manifest.Checkpoint{
		Stage:     s.name,
		Ordinal:   ordinal(s.name),
		Artifact:  s.artifact,
		Status:    manifest.StatusCompleted,
		SizeBytes: size,
		SHA256:    digest,
		RunID:     d.runID,
	})
	if err != nil {
		return services.Wrap(services.ErrIO, s.name, "adopt artifact", "", err)
	}
	logging.WithContext(ctx, d.logger).Info("adopted untracked artifact",
		logging.String(logging.FieldStage, s.name),
		logging.String(logging.FieldEventType, "checkpoint_adopted"),
		logging.String(logging.FieldArtifact, s.artifact),
		logging.Int64("size_bytes", size),
	)
	return nil
}

func mismatch(field string, want, got any) string {
	return fmt.Sprintf("%s changed (recorded %v, found %v)", field, want, got)
}
