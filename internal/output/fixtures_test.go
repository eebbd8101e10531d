package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

const (
	appDrv    = "/nix/store/aaa-app-1.0.drv"
	libDrv    = "/nix/store/bbb-libfoo-2.3.drv"
	srcDrv    = "/nix/store/ccc-app-src.drv"
	patchDrv  = "/nix/store/ddd-fix.patch.drv"
	scriptDrv = "/nix/store/eee-setup-script.drv"
)

// buildTestGraph builds a small realistic graph: one root application with a
// library child, a fetched source archive, a patch, and an inline setup
// script.
func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()

	derivations := model.Derivations{
		appDrv: {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/aaa-app-1.0"},
			},
			InputDrvs: map[string][]string{
				libDrv:    {"out"},
				srcDrv:    {"out"},
				patchDrv:  {"out"},
				scriptDrv: {"out"},
			},
			Env: map[string]string{
				"name":    "app-1.0",
				"pname":   "app",
				"version": "1.0",
				"src":     "/nix/store/ccc-app-1.0.tar.gz",
				"patches": "/nix/store/ddd-fix.patch",
			},
		},
		libDrv: {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/bbb-libfoo-2.3"},
			},
			Env: map[string]string{
				"name":    "libfoo-2.3",
				"pname":   "libfoo",
				"version": "2.3",
				"urls":    "https://files.pythonhosted.org/packages/source/l/libfoo/libfoo-2.3.tar.gz",
			},
		},
		srcDrv: {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/ccc-app-1.0.tar.gz"},
			},
			Builder: "builtin:fetchurl",
			Env: map[string]string{
				"name": "source",
				"urls": "https://github.com/acme/app/archive/v1.0.tar.gz",
			},
		},
		patchDrv: {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/ddd-fix.patch"},
			},
			Builder: "builtin:fetchurl",
			Env: map[string]string{
				"name": "fix.patch",
				"urls": "https://example.org/patches/fix.patch",
			},
		},
		scriptDrv: {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/eee-setup-script"},
			},
			Env: map[string]string{
				"name": "setup-script",
				"text": "#!/bin/sh\nexit 0",
			},
		},
	}

	packages := model.Packages{
		"app": {
			Name:    "app-1.0",
			PName:   "app",
			Version: "1.0",
			Meta: model.Meta{
				Description: "An example application",
				Homepage:    model.Homepages{"https://acme.example/app"},
				License: model.Licenses{
					{SpdxID: "MIT", FullName: "MIT License"},
				},
				Maintainers: model.Maintainers{
					{Name: "Jane Doe", Email: "jane@example.org"},
				},
			},
		},
	}

	g, err := graph.Build(derivations, packages, nil)
	require.NoError(t, err)
	return g
}

// buildTwoRootGraph builds a store with two unrelated roots.
func buildTwoRootGraph(t *testing.T) *graph.Graph {
	t.Helper()

	derivations := model.Derivations{
		"/nix/store/aaa-one.drv": {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/aaa-one"},
			},
			Env: map[string]string{"name": "one-1.0", "pname": "one", "version": "1.0"},
		},
		"/nix/store/bbb-two.drv": {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/bbb-two"},
			},
			Env: map[string]string{"name": "two-2.0", "pname": "two", "version": "2.0"},
		},
	}

	g, err := graph.Build(derivations, nil, nil)
	require.NoError(t, err)
	return g
}

// buildBareGraph builds a single-node store with no download URLs and no
// metadata.
func buildBareGraph(t *testing.T) *graph.Graph {
	t.Helper()

	derivations := model.Derivations{
		"/nix/store/fff-bare.drv": {
			Outputs: map[string]model.DerivationOutput{
				"out": {Path: "/nix/store/fff-bare"},
			},
			Env: map[string]string{"name": "bare-1.0", "pname": "bare", "version": "1.0"},
		},
	}

	g, err := graph.Build(derivations, nil, nil)
	require.NoError(t, err)
	return g
}

func jsonOptions() Options {
	return Options{Serialization: SerializationJSON, ToolVersion: "1.0.0"}
}

func componentNamed(components []cdxComponent, name string) *cdxComponent {
	for i := range components {
		if components[i].Name == name {
			return &components[i]
		}
	}
	return nil
}
