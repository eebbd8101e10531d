// Package model defines the internal data structures used by the SBOM engine.
package model

import (
	"strings"

	"github.com/StinkyLord/nix-sbom-builder/internal/mirrors"
)

// BuilderKind classifies the executable that performs a derivation's build.
// It is informational only and never drives graph classification.
type BuilderKind int

const (
	BuilderUnknown BuilderKind = iota
	BuilderFetchURL
	BuilderShell
	BuilderBusyboxShell
)

func (k BuilderKind) String() string {
	switch k {
	case BuilderFetchURL:
		return "fetch-url"
	case BuilderShell:
		return "shell"
	case BuilderBusyboxShell:
		return "minimal-shell"
	default:
		return "unknown"
	}
}

// DerivationOutput describes a single output slot of a derivation.
type DerivationOutput struct {
	Path     string `json:"path"`
	HashAlgo string `json:"hashAlgo,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

// Derivation is one low-level Nix build unit, as emitted by
// `nix derivation show`.
type Derivation struct {
	Outputs      map[string]DerivationOutput `json:"outputs"`
	InputSources []string                    `json:"inputSrcs"`
	InputDrvs    map[string][]string         `json:"inputDrvs"`
	System       string                      `json:"system"`
	Builder      string                      `json:"builder"`
	Args         []string                    `json:"args"`
	Env          map[string]string           `json:"env"`
}

// Derivations maps a derivation store path to its parsed record.
type Derivations map[string]*Derivation

// OutPath returns the store path of the "out" output, or the first
// output path if no "out" slot exists.
func (d *Derivation) OutPath() string {
	if out, ok := d.Outputs["out"]; ok {
		return out.Path
	}
	for _, out := range d.Outputs {
		return out.Path
	}
	return ""
}

// BuilderKind classifies the builder executable.
func (d *Derivation) BuilderKind() BuilderKind {
	switch {
	case d.Builder == "builtin:fetchurl":
		return BuilderFetchURL
	case strings.Contains(d.Builder, "busybox"):
		return BuilderBusyboxShell
	case strings.HasSuffix(d.Builder, "/bin/bash") || strings.HasSuffix(d.Builder, "/bin/sh"):
		return BuilderShell
	default:
		return BuilderUnknown
	}
}

// EnvName returns the "name" environment value, if any.
func (d *Derivation) EnvName() string { return d.Env["name"] }

// EnvPName returns the "pname" environment value, if any.
func (d *Derivation) EnvPName() string { return d.Env["pname"] }

// EnvVersion returns the "version" environment value, if any.
func (d *Derivation) EnvVersion() string { return d.Env["version"] }

// EnvRev returns the "rev" environment value, if any.
func (d *Derivation) EnvRev() string { return d.Env["rev"] }

// EnvSrc returns the "src" environment value, if any.
func (d *Derivation) EnvSrc() string { return d.Env["src"] }

// IsInlineScript reports whether the derivation builds an inline script
// body ("text" in the environment) rather than a real package.
func (d *Derivation) IsInlineScript() bool {
	_, ok := d.Env["text"]
	return ok
}

// Patches returns the store paths declared in the whitespace-separated
// "patches" environment value.
func (d *Derivation) Patches() []string {
	return strings.Fields(d.Env["patches"])
}

// URLs returns the declared download URLs ("url" then "urls", both
// whitespace-separated), each passed through mirror translation.
// An unknown mirror alias is a hard error.
func (d *Derivation) URLs() ([]string, error) {
	var urls []string
	for _, key := range []string{"url", "urls"} {
		for _, raw := range strings.Fields(d.Env[key]) {
			translated, err := mirrors.Translate(raw)
			if err != nil {
				return nil, err
			}
			urls = append(urls, translated)
		}
	}
	return urls, nil
}

// FirstURL returns the first declared download URL, or "" if the
// derivation declares none. URLs that fail mirror translation are
// skipped; callers that must surface that error use URLs instead.
func (d *Derivation) FirstURL() string {
	for _, key := range []string{"url", "urls"} {
		for _, raw := range strings.Fields(d.Env[key]) {
			translated, err := mirrors.Translate(raw)
			if err != nil {
				continue
			}
			return translated
		}
	}
	return ""
}
