// Package forge understands git hosting services: it parses remote URLs into
// owner/name pairs, composes human-readable links, and publishes releases
// through the GitHub CLI.
package forge

import (
	"fmt"
	"net/url"
	"strings"
)

// RemoteInfo describes a repository on a forge.
type RemoteInfo struct {
	Provider string `json:"provider"`
	Host     string `json:"host"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
}

// Slug returns "owner/name".
func (r RemoteInfo) Slug() string {
	return r.Owner + "/" + r.Name
}

// WebURL returns the repository home page.
func (r RemoteInfo) WebURL() string {
	if r.Provider == "sourcehut" {
		return fmt.Sprintf("https://git.%s/%s/%s", r.Host, r.Owner, r.Name)
	}
	return fmt.Sprintf("https://%s/%s/%s", r.Host, r.Owner, r.Name)
}

// ParseRemoteURL extracts forge information from a git remote URL. It
// accepts https, ssh and scp-like ("git@host:owner/name.git") forms and
// reports false for anything it cannot split into host, owner and name.
func ParseRemoteURL(raw string) (RemoteInfo, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RemoteInfo{}, false
	}

	var host, path string
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return RemoteInfo{}, false
		}
		host, path = u.Hostname(), u.Path
	} else {
		// scp-like syntax: [user@]host:path
		at := strings.LastIndex(raw, "@")
		colon := strings.Index(raw, ":")
		if colon < 0 || colon < at {
			return RemoteInfo{}, false
		}
		host, path = raw[at+1:colon], raw[colon+1:]
	}

	path = strings.Trim(strings.TrimSuffix(strings.Trim(path, "/"), ".git"), "/")
	slash := strings.LastIndex(path, "/")
	if host == "" || slash <= 0 || slash == len(path)-1 {
		return RemoteInfo{}, false
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	provider := ProviderFromHost(host)
	if provider == "sourcehut" {
		host = strings.TrimPrefix(host, "git.")
	}
	return RemoteInfo{
		Provider: provider,
		Host:     host,
		Owner:    path[:slash],
		Name:     path[slash+1:],
	}, true
}

// ProviderFromHost maps a host name to a provider identifier. Self-hosted
// instances named like "github.*" or "gitlab.*" are recognized; everything
// else is "custom".
func ProviderFromHost(host string) string {
	switch {
	case host == "github.com" || strings.HasPrefix(host, "github."):
		return "github"
	case host == "gitlab.com" || strings.HasPrefix(host, "gitlab."):
		return "gitlab"
	case host == "codeberg.org":
		return "codeberg"
	case host == "bitbucket.org":
		return "bitbucket"
	case host == "sr.ht" || host == "git.sr.ht":
		return "sourcehut"
	case host == "gitea.io" || strings.HasPrefix(host, "gitea."):
		return "gitea"
	default:
		return "custom"
	}
}

// ReleaseURL returns the page of the release tagged tag.
func ReleaseURL(r RemoteInfo, tag string) string {
	base := r.WebURL()
	switch r.Provider {
	case "gitlab":
		return base + "/-/releases/" + tag
	case "bitbucket":
		return base + "/src/" + tag
	case "sourcehut":
		return base + "/refs/" + tag
	default:
		return base + "/releases/tag/" + tag
	}
}

// CompareURL returns a link comparing prev with curr.
func CompareURL(r RemoteInfo, prev, curr string) string {
	base := r.WebURL()
	switch r.Provider {
	case "gitlab":
		return fmt.Sprintf("%s/-/compare/%s...%s", base, prev, curr)
	case "bitbucket":
		return fmt.Sprintf("%s/branches/compare/%s%%0D%s", base, curr, prev)
	case "sourcehut":
		return fmt.Sprintf("%s/log/%s..%s", base, prev, curr)
	default:
		return fmt.Sprintf("%s/compare/%s...%s", base, prev, curr)
	}
}
