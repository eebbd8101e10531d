package infer

import "regexp"

// Host-specific project patterns. Each pair extracts a forge project from a
// generic download URL so that a cloneable git URL (and a project name) can
// be derived from it.
var (
	reGitHubProject      = regexp.MustCompile(`https?://github\.com/([0-9a-zA-Z_-]+)/([0-9a-zA-Z_-]+)`)
	reGitLabProject      = regexp.MustCompile(`https?://gitlab\.com/([0-9a-zA-Z_-]+)/([0-9a-zA-Z_-]+)`)
	reGnomeGitLabProject = regexp.MustCompile(`https?://gitlab\.gnome\.org/([0-9a-zA-Z_-]+)/([0-9a-zA-Z_-]+)`)
	rePagureProject      = regexp.MustCompile(`https://pagure\.io/([0-9a-zA-Z_-]+)`)
	reGNUProject         = regexp.MustCompile(`https?://ftp\.gnu\.org/(?:pub/)?gnu/([0-9a-zA-Z_-]+)`)
	reNonGNURelease      = regexp.MustCompile(`https?://download\.savannah\.nongnu\.org/releases/([0-9a-zA-Z_-]+)`)
	reNonGNUProject      = regexp.MustCompile(`https?://savannah\.nongnu\.org/(?:download|projects)/([0-9a-zA-Z_-]+)`)
	reBitbucketProject   = regexp.MustCompile(`https?://bitbucket\.org/([0-9a-zA-Z_-]+)/([0-9a-zA-Z_-]+)`)
)

// gitURLExtractor derives a cloneable git URL from a generic download URL,
// returning "" when the URL does not match its host.
type gitURLExtractor func(url string) string

var gitURLExtractors = []gitURLExtractor{
	githubGitURL,
	gitlabGitURL,
	gnomeGitLabGitURL,
	pagureGitURL,
	gnuGitURL,
	nongnuReleaseGitURL,
	nongnuProjectGitURL,
	bitbucketGitURL,
	// SourceForge read-only git access exists but has no derivable URL shape:
	// https://sourceforge.net/p/forge/documentation/Git/#anonymous-access-read-only
}

// GitURLFromGenericURL derives a cloneable git repository URL from a generic
// download URL, trying each known forge in turn. Returns "" when no forge
// matches.
func GitURLFromGenericURL(genericURL string) string {
	for _, extract := range gitURLExtractors {
		if gitURL := extract(genericURL); gitURL != "" {
			return gitURL
		}
	}
	return ""
}

func githubGitURL(url string) string {
	m := reGitHubProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://github.com/" + m[1] + "/" + m[2] + ".git"
}

func gitlabGitURL(url string) string {
	m := reGitLabProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://gitlab.com/" + m[1] + "/" + m[2] + ".git"
}

func gnomeGitLabGitURL(url string) string {
	m := reGnomeGitLabProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://gitlab.gnome.org/" + m[1] + "/" + m[2] + ".git"
}

func pagureGitURL(url string) string {
	m := rePagureProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://pagure.io/" + m[1] + ".git"
}

func gnuGitURL(url string) string {
	m := reGNUProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://git.savannah.gnu.org/git/" + m[1] + ".git"
}

func nongnuReleaseGitURL(url string) string {
	m := reNonGNURelease.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://git.savannah.nongnu.org/git/" + m[1] + ".git"
}

func nongnuProjectGitURL(url string) string {
	m := reNonGNUProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://git.savannah.nongnu.org/git/" + m[1] + ".git"
}

func bitbucketGitURL(url string) string {
	// Bitbucket does not allow anonymous git access by default, so cloning
	// the derived URL may still fail.
	m := reBitbucketProject.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://bitbucket.org/" + m[1] + "/" + m[2] + ".git"
}

// projectNameFromURL extracts a project name from a download URL using the
// forge patterns first, then a generic archive-filename pattern.
func projectNameFromURL(url string) string {
	for _, re := range []*regexp.Regexp{
		reGitHubProject, reGitLabProject, reGnomeGitLabProject,
		reBitbucketProject,
	} {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[2]
		}
	}
	for _, re := range []*regexp.Regexp{
		rePagureProject, reGNUProject, reNonGNURelease, reNonGNUProject,
	} {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return nameFromArchiveFilename(url)
}
