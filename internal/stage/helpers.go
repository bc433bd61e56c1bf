package stage

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"buildmsa/internal/services"
)

var titleCaser = cases.Title(language.English)

// Label converts a stage identifier such as "search_nr" into "Search Nr".
func Label(name string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
}

// RequireInputs fails with services.ErrNotFound when any path is missing.
func RequireInputs(stageName string, paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			marker := services.ErrIO
			if errors.Is(err, fs.ErrNotExist) {
				marker = services.ErrNotFound
			}
			return services.Wrap(marker, stageName, "check input",
				"required input "+path+" is missing; rerun the earlier stages", err)
		}
	}
	return nil
}
