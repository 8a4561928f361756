package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyBlobPackageImportsBackends ensures the backend implementations stay
// behind the blob facade. Everything else must depend on the core.Store
// interface and open stores through blob.Open.
func TestOnlyBlobPackageImportsBackends(t *testing.T) {
	backendPrefixes := []string{
		"plantcore/internal/infra/blob/fs",
		"plantcore/internal/infra/blob/memory",
		"plantcore/internal/infra/blob/s3",
	}
	allowedPrefix := "plantcore/internal/infra/blob"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "plantcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if isPathUnder(pkg.PkgPath, allowedPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			for _, backend := range backendPrefixes {
				if isPathUnder(importPath, backend) {
					seen[pkg.PkgPath+": "+importPath] = struct{}{}
				}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of blob backend: %s", v)
		}
		t.Fatalf("found %d forbidden imports of blob backend packages", len(violations))
	}
}

func isPathUnder(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
