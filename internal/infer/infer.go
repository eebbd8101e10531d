// Package infer derives package identity (name, version, purl) from a
// derivation and its optional metadata, using a cascade of increasingly weak
// signals. All functions here are pure reads; a miss is a valid degraded
// result, never an error.
package infer

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

// sourcePlaceholder is the conventional name nixpkgs gives to fetched
// source derivations. It is never a usable package name.
const sourcePlaceholder = "source"

var (
	reSemver      = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)(-[0-9a-zA-Z_]+)?`)
	reCommitSHA   = regexp.MustCompile(`\b[0-9a-f]{40}\b`)
	reArchiveStem = regexp.MustCompile(`^([0-9a-zA-Z_.+-]+?)-v?[0-9][0-9a-zA-Z._]*$`)
)

// Name infers a human package name. The cascade stops at the first signal
// that produces a usable name; it returns "" when every signal misses.
func Name(drv *model.Derivation, pkg *model.Package) string {
	extractors := []func() string{
		func() string { return metaPName(pkg) },
		func() string { return metaName(pkg) },
		func() string { return drv.EnvPName() },
		func() string { return envNameWithoutVersion(drv) },
		func() string { return projectNameFromURL(drv.FirstURL()) },
	}
	for _, extract := range extractors {
		if name := extract(); name != "" {
			return name
		}
	}
	return ""
}

// Version infers a version string, returning "" when every signal misses.
func Version(drv *model.Derivation, pkg *model.Package) string {
	extractors := []func() string{
		func() string { return envVersion(drv) },
		func() string { return versionFromURL(drv.FirstURL()) },
		func() string { return versionFromNameSuffix(drv, pkg) },
	}
	for _, extract := range extractors {
		if version := extract(); version != "" {
			return version
		}
	}
	return ""
}

func metaPName(pkg *model.Package) string {
	if pkg == nil || pkg.PName == sourcePlaceholder {
		return ""
	}
	return pkg.PName
}

func metaName(pkg *model.Package) string {
	if pkg == nil {
		return ""
	}
	return pkg.Name
}

// envNameWithoutVersion returns the recipe's "name" environment value with
// its version suffix stripped. The suffix is only stripped when the version
// came from the rev/version environment keys; versions parsed out of URLs
// are too weak a signal to strip substrings on.
func envNameWithoutVersion(drv *model.Derivation) string {
	name := drv.EnvName()
	if name == "" || name == sourcePlaceholder {
		return ""
	}
	if version := envVersion(drv); version != "" {
		name = strings.TrimSuffix(name, "-"+version)
	}
	if name == sourcePlaceholder {
		return ""
	}
	return name
}

// envVersion reads the high-confidence version signals: the "rev"
// environment value (leading "v" stripped), then "version".
func envVersion(drv *model.Derivation) string {
	if rev := drv.EnvRev(); rev != "" {
		return strings.TrimPrefix(rev, "v")
	}
	return drv.EnvVersion()
}

// versionFromURL extracts a commit SHA or a semantic-version substring from
// the filename part of a download URL.
func versionFromURL(url string) string {
	if url == "" {
		return ""
	}
	filename := url
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		filename = url[idx+1:]
	}
	if sha := reCommitSHA.FindString(filename); sha != "" {
		return sha
	}
	m := reSemver.FindStringSubmatch(filename)
	if m == nil {
		return ""
	}
	if _, err := semver.NewVersion(m[1]); err != nil {
		return ""
	}
	return m[1]
}

// versionFromNameSuffix returns the part of the "name" environment value
// left after removing the pname prefix, e.g. "zstd-1.5.5" minus "zstd".
func versionFromNameSuffix(drv *model.Derivation, pkg *model.Package) string {
	name := drv.EnvName()
	if name == "" {
		return ""
	}
	pname := drv.EnvPName()
	if pname == "" && pkg != nil {
		pname = pkg.PName
	}
	if pname == "" || !strings.HasPrefix(name, pname+"-") {
		return ""
	}
	return strings.TrimPrefix(name, pname+"-")
}

// nameFromArchiveFilename parses a project name out of an archive filename,
// e.g. "libgsf-1.14.43.tar.xz" -> "libgsf".
func nameFromArchiveFilename(url string) string {
	if url == "" {
		return ""
	}
	stem := url
	if idx := strings.LastIndex(stem, "/"); idx >= 0 {
		stem = stem[idx+1:]
	}
	stem = strings.TrimSuffix(stem, "?download")
	for _, ext := range []string{
		".tar.gz", ".tar.xz", ".tar.bz2", ".tar.zst", ".tar.lz",
		".tgz", ".tbz2", ".txz", ".zip", ".tar", ".gz", ".xz", ".bz2",
	} {
		if strings.HasSuffix(stem, ext) {
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}
	if stem == "" {
		return ""
	}
	if m := reArchiveStem.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	// No version suffix at all; the stem itself is the name if it looks
	// like one.
	if strings.ContainsAny(stem, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return stem
	}
	return ""
}
