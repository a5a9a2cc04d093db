// Package release creates per-package release tags for a monorepo.
//
// Every packages/<dir>/package.json contributes three tags: name@MAJOR,
// name@MAJOR.MINOR and name@MAJOR.MINOR.PATCH. The patch tag is created once;
// the major and minor tags are moved to the tagged commit on each release.
package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// PackagesDir is the monorepo directory holding one package per subdirectory.
const PackagesDir = "packages"

// ErrInvalidPackage indicates a package.json without a usable name or version.
var ErrInvalidPackage = errors.New("invalid package")

// Package is a releasable package.
type Package struct {
	// Dir is the package directory relative to the repository root.
	Dir     string
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Plan is the set of tag changes for one package.
type Plan struct {
	Package Package

	// Create is the immutable version tag.
	Create string

	// Move lists floating tags that are force-moved to the release commit.
	// Pre-releases do not move floating tags.
	Move []string
}

// Tags returns every tag touched by the plan.
func (p Plan) Tags() []string {
	return append([]string{p.Create}, p.Move...)
}

// DiscoverPackages reads packages/*/package.json under root, sorted by directory.
// Directories without a package.json are skipped.
func DiscoverPackages(root string) ([]Package, error) {
	entries, err := os.ReadDir(filepath.Join(root, PackagesDir))
	if err != nil {
		return nil, fmt.Errorf("read packages: %w", err)
	}

	var pkgs []Package
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(PackagesDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(root, dir, "package.json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}

		pkg := Package{Dir: dir}
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("%w: %s/package.json: %v", ErrInvalidPackage, dir, err)
		}
		pkgs = append(pkgs, pkg)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Dir < pkgs[j].Dir })
	return pkgs, nil
}

// PlanTags computes the tag changes for packages whose version tag is not in
// existing. Packages that are already tagged are left out.
func PlanTags(pkgs []Package, existing map[string]bool) ([]Plan, error) {
	var plans []Plan
	for _, pkg := range pkgs {
		if pkg.Name == "" {
			return nil, fmt.Errorf("%w: %s: missing name", ErrInvalidPackage, pkg.Dir)
		}
		v, err := semver.StrictNewVersion(pkg.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: version %q: %v", ErrInvalidPackage, pkg.Name, pkg.Version, err)
		}

		create := fmt.Sprintf("%s@%s", pkg.Name, v.String())
		if existing[create] {
			continue
		}

		plan := Plan{Package: pkg, Create: create}
		if v.Prerelease() == "" {
			plan.Move = []string{
				fmt.Sprintf("%s@%d.%d", pkg.Name, v.Major(), v.Minor()),
				fmt.Sprintf("%s@%d", pkg.Name, v.Major()),
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
