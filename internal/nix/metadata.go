package nix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

// LoadPackages returns the package metadata index, keyed by both name and
// pname so graph nodes can be matched on either. When snapshotPath is empty
// the index is collected from the local store with nix-env; otherwise the
// given pre-exported snapshot file is read.
func LoadPackages(snapshotPath string, logger hclog.Logger) (model.Packages, error) {
	var data []byte
	var err error
	if snapshotPath != "" {
		logger.Info("reading package metadata snapshot", "path", snapshotPath)
		data, err = os.ReadFile(snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read metadata snapshot: %w", err)
		}
	} else {
		logger.Info("collecting package metadata from the local store")
		cmd := exec.Command("nix-env", "-q", "--installed", "--meta", "--json")
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("nix-env metadata query failed: %w (%s)",
				err, strings.TrimSpace(stderr.String()))
		}
		data = stdout.Bytes()
	}

	packages, err := ParsePackages(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded package metadata", "count", len(packages))
	return packages, nil
}

// ParsePackages decodes a nix-env metadata document (a map from attribute
// path to package record) and re-keys it by package name and pname.
func ParsePackages(data []byte) (model.Packages, error) {
	// nix-env keys the document by attribute path (e.g. "nixpkgs.zstd"),
	// which is not what derivations carry; the index is re-keyed below.
	var byAttr map[string]*model.Package
	if err := json.Unmarshal(data, &byAttr); err != nil {
		return nil, fmt.Errorf("cannot parse package metadata: %w", err)
	}

	packages := make(model.Packages, len(byAttr)*2)
	for _, pkg := range byAttr {
		if pkg.Name != "" {
			packages[pkg.Name] = pkg
		}
		if pkg.PName != "" {
			packages[pkg.PName] = pkg
		}
	}
	return packages, nil
}
