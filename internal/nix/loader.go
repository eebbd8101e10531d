// Package nix drives the external Nix tooling that materializes the
// derivation store and the package metadata index consumed by the graph
// builder.
package nix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

// currentSystemProfile is the store path of the running system's profile.
const currentSystemProfile = "/run/current-system"

// LoadDerivations resolves a Nix installable (a .drv path, a store path, or
// a flake reference) and returns the fully recursive derivation store for it.
func LoadDerivations(target string, logger hclog.Logger) (model.Derivations, error) {
	logger.Info("materializing derivations", "target", target)

	cmd := exec.Command(
		"nix", "--extra-experimental-features", "nix-command flakes",
		"derivation", "show", "-r", target,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("nix derivation show failed for %q: %w (%s)",
			target, err, strings.TrimSpace(stderr.String()))
	}

	derivations, err := ParseDerivations(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	logger.Info("materialized derivations", "count", len(derivations))
	return derivations, nil
}

// LoadCurrentSystem returns the derivation store for the running system.
func LoadCurrentSystem(logger hclog.Logger) (model.Derivations, error) {
	return LoadDerivations(currentSystemProfile, logger)
}

// ParseDerivations decodes the JSON document emitted by
// `nix derivation show -r`: a map from .drv store path to derivation.
func ParseDerivations(data []byte) (model.Derivations, error) {
	var derivations model.Derivations
	if err := json.Unmarshal(data, &derivations); err != nil {
		return nil, fmt.Errorf("cannot parse derivations: %w", err)
	}
	for id, drv := range derivations {
		if len(drv.Outputs) == 0 {
			return nil, fmt.Errorf("derivation %s has no outputs", id)
		}
	}
	return derivations, nil
}
