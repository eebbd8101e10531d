package infer

import (
	"net/url"
	"strings"

	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

// PackageURL is a package-url (purl) identifier for a component.
type PackageURL struct {
	Scheme      string // purl type, e.g. "generic", "pypi", "cargo"
	Name        string
	Version     string
	DownloadURL string // retained as the download_url qualifier
}

// String renders the purl, e.g.
// pkg:generic/zstd@1.5.5?download_url=https%3A%2F%2F...
func (p PackageURL) String() string {
	var b strings.Builder
	b.WriteString("pkg:")
	b.WriteString(p.Scheme)
	b.WriteString("/")
	b.WriteString(p.Name)
	if p.Version != "" {
		b.WriteString("@")
		b.WriteString(p.Version)
	}
	if p.DownloadURL != "" {
		b.WriteString("?download_url=")
		b.WriteString(url.QueryEscape(p.DownloadURL))
	}
	return b.String()
}

// purlSchemeTable maps download-URL prefixes to registry-specific purl
// schemes. The table is ordered and the first match wins; anything that
// matches no entry stays "generic".
var purlSchemeTable = []struct {
	scheme   string
	prefixes []string
}{
	{"cargo", []string{"crates.io/", "static.crates.io/"}},
	{"cpan", []string{"cpan.metacpan.org/", "search.cpan.org/"}},
	{"gem", []string{"rubygems.org/"}},
	{"hackage", []string{"hackage.haskell.org/"}},
	{"maven", []string{"repo1.maven.org/maven2/", "repo.maven.apache.org/maven2/"}},
	{"npm", []string{"registry.npmjs.org/", "registry.npmjs.com/"}},
	{"nuget", []string{"nuget.org/", "api.nuget.org/"}},
	{"bitbucket", []string{"bitbucket.org/"}},
	{"docker", []string{"registry.hub.docker.com/", "registry-1.docker.io/"}},
	{"pypi", []string{"pypi.io/", "pypi.org/", "pypi.python.org/", "files.pythonhosted.org/"}},
}

// Purl infers the package-url for a derivation. The name falls back to the
// literal "unknown" when name inference misses; the scheme is upgraded from
// "generic" by matching the first download URL against the scheme table.
func Purl(drv *model.Derivation, pkg *model.Package) PackageURL {
	purl := PackageURL{
		Scheme:  "generic",
		Name:    Name(drv, pkg),
		Version: Version(drv, pkg),
	}
	if purl.Name == "" {
		purl.Name = "unknown"
	}
	downloadURL := drv.FirstURL()
	if downloadURL == "" {
		return purl
	}
	purl.DownloadURL = downloadURL
	purl.Scheme = schemeForURL(downloadURL)
	return purl
}

func schemeForURL(downloadURL string) string {
	stripped := downloadURL
	for _, prefix := range []string{"https://", "http://", "ftp://"} {
		if strings.HasPrefix(stripped, prefix) {
			stripped = strings.TrimPrefix(stripped, prefix)
			break
		}
	}
	stripped = strings.TrimPrefix(stripped, "www.")
	for _, entry := range purlSchemeTable {
		for _, prefix := range entry.prefixes {
			if strings.HasPrefix(stripped, prefix) {
				return entry.scheme
			}
		}
	}
	return "generic"
}
