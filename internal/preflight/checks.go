package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"buildmsa/internal/collect"
	"buildmsa/internal/config"
	"buildmsa/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryTarget accepts an existing writable directory, or a missing
// one whose nearest existing ancestor is writable.
func CheckDirectoryTarget(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		next := filepath.Dir(ancestor)
		if next == ancestor {
			break
		}
		ancestor = next
	}
	if res := CheckDirectoryAccess(name, ancestor); !res.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, ancestor)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least min
// bytes available. A missing path is measured at its nearest existing parent.
func CheckFreeSpace(name, path string, min uint64) Result {
	target := path
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		next := filepath.Dir(target)
		if next == target {
			break
		}
		target = next
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	avail := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(avail), target)
	if avail < min {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %s)", detail, humanize.IBytes(min))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDatabase verifies an mmseqs database: the data file must be readable
// and its index and dbtype companions present.
func CheckDatabase(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	for _, suffix := range []string{".index", ".dbtype"} {
		if _, err := os.Stat(path + suffix); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing %s; is this an mmseqs database?)", path, suffix)}
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, humanize.IBytes(uint64(info.Size())))}
}

// CheckInput verifies that the query file holds at least one record.
func CheckInput(path string) Result {
	const name = "Query input"
	rec, err := collect.FirstRecord(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%q, %d residues)", path, rec.Header, len(rec.Sequence))}
}

// CheckSystemDeps evaluates the external binaries the pipeline invokes.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "MMseqs2",
			Command:     cfg.MMseqsBinary(),
			Description: "Required for database creation and profile search",
		},
		{
			Name:        "Clustal Omega",
			Command:     cfg.ClustaloBinary(),
			Description: "Required for multiple sequence alignment",
		},
	})
}
