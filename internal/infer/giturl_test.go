package infer

import "testing"

func TestGitURLFromGenericURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://github.com/sass/libsass/archive/3.6.4.tar.gz",
			"https://github.com/sass/libsass.git"},
		{"https://github.com/sass/libsass",
			"https://github.com/sass/libsass.git"},
		{"https://gitlab.com/rszibele/e-juice-calc/-/archive/1.0.7/e-juice-calc-1.0.7.tar.bz2",
			"https://gitlab.com/rszibele/e-juice-calc.git"},
		{"https://gitlab.com/rszibele/e-juice-calc",
			"https://gitlab.com/rszibele/e-juice-calc.git"},
		{"https://gitlab.gnome.org/GNOME/libsecret/-/archive/0.19.1/libsecret-0.19.1.tar.gz",
			"https://gitlab.gnome.org/GNOME/libsecret.git"},
		{"https://gitlab.gnome.org/GNOME/libsecret",
			"https://gitlab.gnome.org/GNOME/libsecret.git"},
		{"https://pagure.io/libaio/archive/libaio-0.3.111/libaio-libaio-0.3.111.tar.gz",
			"https://pagure.io/libaio.git"},
		{"https://ftp.gnu.org/pub/gnu/libiconv/libiconv-1.16.tar.gz",
			"https://git.savannah.gnu.org/git/libiconv.git"},
		{"http://ftp.gnu.org/gnu/autoconf/autoconf-2.13.tar.gz",
			"https://git.savannah.gnu.org/git/autoconf.git"},
		{"https://download.savannah.nongnu.org/releases/openexr/openexr-2.2.1.tar.gz",
			"https://git.savannah.nongnu.org/git/openexr.git"},
		{"http://savannah.nongnu.org/download/icoutils/icoutils-0.31.1.tar.bz2",
			"https://git.savannah.nongnu.org/git/icoutils.git"},
		{"https://savannah.nongnu.org/projects/acl",
			"https://git.savannah.nongnu.org/git/acl.git"},
		{"https://bitbucket.org/Doomseeker/doomseeker/get/1.3.1.tar.bz2",
			"https://bitbucket.org/Doomseeker/doomseeker.git"},
	}

	for _, tc := range cases {
		if got := GitURLFromGenericURL(tc.in); got != tc.want {
			t.Errorf("GitURLFromGenericURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGitURLNoForgeMatch(t *testing.T) {
	for _, url := range []string{
		"https://downloads.sourceforge.net/project/foo/foo-1.0.tar.gz",
		"https://ftp.gnu.org/pub/other/foo/foo-1.0.tar.gz",
		"",
	} {
		if got := GitURLFromGenericURL(url); got != "" {
			t.Errorf("GitURLFromGenericURL(%q) = %q, want no match", url, got)
		}
	}
}

func TestProjectNameFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://github.com/sass/libsass/archive/3.6.4.tar.gz", "libsass"},
		{"https://gitlab.gnome.org/GNOME/libsecret/-/archive/0.19.1/libsecret-0.19.1.tar.gz", "libsecret"},
		{"https://pagure.io/libaio/archive/libaio-0.3.111/libaio-libaio-0.3.111.tar.gz", "libaio"},
		{"https://ftp.gnu.org/pub/gnu/libiconv/libiconv-1.16.tar.gz", "libiconv"},
		{"https://downloads.sourceforge.net/project/icu/icu4c-73.2.tar.gz", "icu4c"},
	}
	for _, tc := range cases {
		if got := projectNameFromURL(tc.in); got != tc.want {
			t.Errorf("projectNameFromURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
