package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabases(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateCollect(); err != nil {
		return err
	}
	return c.validateCheckpoint()
}

func (c *Config) validateDatabases() error {
	if strings.ContainsAny(c.Databases.NR, `/\`) {
		return errors.New("databases.nr must be a database name, not a path")
	}
	if strings.ContainsAny(c.Databases.Redundant, `/\`) {
		return errors.New("databases.redundant must be a database name, not a path")
	}
	// Both query databases live at <output>/query.<name>.db.
	if c.Databases.NR == c.Databases.Redundant {
		return fmt.Errorf("databases.nr and databases.redundant must differ (both %q)", c.Databases.NR)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if err := ensurePositiveMap(map[string]int{
		"search.threads":       c.Search.Threads,
		"search.nr_iterations": c.Search.NRIterations,
		"search.max_seqs":      c.Search.MaxSeqs,
		"aligner.threads":      c.Aligner.Threads,
	}); err != nil {
		return err
	}
	if c.Search.Sensitivity <= 0 {
		return errors.New("search.sensitivity must be positive")
	}
	if c.Search.MaxSeqID <= 0 || c.Search.MaxSeqID > 1 {
		return errors.New("search.max_seq_id must be within (0, 1]")
	}
	return nil
}

func (c *Config) validateCollect() error {
	if c.Collect.MaxSequences < 0 {
		return errors.New("collect.max_sequences must be >= 0")
	}
	return nil
}

func (c *Config) validateCheckpoint() error {
	switch c.Checkpoint.Verify {
	case VerifyExists, VerifySize, VerifySHA256:
		return nil
	default:
		return fmt.Errorf("checkpoint.verify must be one of %q, %q, %q (got %q)", VerifyExists, VerifySize, VerifySHA256, c.Checkpoint.Verify)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
