// Package mirrors resolves Nix mirror:// pseudo-URLs to canonical hosts.
package mirrors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownMirror is returned when a mirror:// URL names an alias that is
// not in the table. This means the table is out of sync with nixpkgs and the
// download location would otherwise be wrong, so callers must treat it as fatal.
var ErrUnknownMirror = errors.New("unknown mirror alias")

// mirrorTable maps mirror aliases to canonical hosts. The mapping follows
// pkgs/build-support/fetchurl/mirrors.nix in nixpkgs. Nix does not expand
// these aliases when exporting derivations, so the translation happens here.
// Where nixpkgs lists several mirrors per alias, the entry below is the one
// that best describes the authoritative source of the package, not the
// fastest one.
var mirrorTable = map[string]string{
	"hashedMirrors":   "https://tarballs.nixos.org",
	"alsa":            "https://www.alsa-project.org/files/pub/",
	"apache":          "https://dlcdn.apache.org/",
	"bioc":            "http://bioc.ism.ac.jp/",
	"cran":            "https://cran.r-project.org/src/contrib/",
	"bitlbee":         "https://get.bitlbee.org/",
	"gcc":             "https://mirror.koddos.net/gcc/",
	"gnome":           "https://download.gnome.org/",
	"gnu":             "https://ftp.gnu.org/pub/gnu/",
	"gnupg":           "https://gnupg.org/ftp/gcrypt/",
	"ibiblioPubLinux": "https://www.ibiblio.org/pub/Linux/",
	"imagemagick":     "https://www.imagemagick.org/download/",
	"kde":             "https://cdn.download.kde.org/",
	"kernel":          "https://cdn.kernel.org/pub/",
	"mysql":           "https://cdn.mysql.com/Downloads/",
	"maven":           "https://repo1.maven.org/maven2/",
	"mozilla":         "https://download.cdn.mozilla.net/pub/mozilla.org/",
	"osdn":            "https://osdn.dl.osdn.jp/",
	"postgresql":      "https://ftp.postgresql.org/pub/",
	"qt":              "https://download.qt.io/",
	"sageupstream":    "https://mirrors.mit.edu/sage/spkg/upstream/",
	"samba":           "https://www.samba.org/ftp/",
	"savannah":        "https://ftp.gnu.org/gnu/",
	"sourceforge":     "https://downloads.sourceforge.net/",
	"steamrt":         "https://repo.steampowered.com/steamrt/",
	"tcsh":            "https://astron.com/pub/tcsh/",
	"xfce":            "https://archive.xfce.org/",
	"xorg":            "https://xorg.freedesktop.org/releases/",
	"cpan":            "https://cpan.metacpan.org/",
	"hackage":         "https://hackage.haskell.org/package/",
	"luarocks":        "https://luarocks.org/",
	"pypi":            "https://pypi.io/packages/source/",
	"testpypi":        "https://test.pypi.io/packages/source/",
	"centos":          "https://vault.centos.org/",
	"debian":          "https://httpredir.debian.org/debian/",
	"fedora":          "https://archives.fedoraproject.org/pub/fedora/",
	"gentoo":          "https://distfiles.gentoo.org/",
	"opensuse":        "https://opensuse.hro.nl/opensuse/distribution/",
	"ubuntu":          "https://nl.archive.ubuntu.com/ubuntu/",
	"openbsd":         "https://ftp.openbsd.org/pub/OpenBSD/",
}

var reMirrorURL = regexp.MustCompile(`^mirror://([0-9a-zA-Z_-]+)/(.*)$`)

// Translate rewrites a mirror://<alias>/<rest> URL to its canonical form.
// Non-mirror URLs pass through unchanged.
func Translate(url string) (string, error) {
	if !strings.HasPrefix(url, "mirror://") {
		return url, nil
	}
	m := reMirrorURL.FindStringSubmatch(url)
	if m == nil {
		return url, nil
	}
	alias := m[1]
	canonical, ok := mirrorTable[alias]
	if !ok {
		return "", fmt.Errorf("%w: %q in %q", ErrUnknownMirror, alias, url)
	}
	return strings.Replace(url, "mirror://"+alias+"/", canonical, 1), nil
}
