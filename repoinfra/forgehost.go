package repoinfra

import (
	"fmt"
	"net/url"
)

// ForgeHostRepository resolves files against a GitLab-style forge's REST
// API, which requires URL-encoding both the project path and file path
// and authenticates via the PRIVATE-TOKEN header rather than URL
// userinfo.
type ForgeHostRepository struct {
	host        string
	projectPath string
	token       string
}

// FileURL builds a GitLab repository-files API URL for filePath at
// version ("ref" in GitLab's vocabulary).
func (r *ForgeHostRepository) FileURL(version, filePath string) string {
	encodedProject := url.QueryEscape(r.projectPath)
	encodedFile := url.QueryEscape(filePath)

	return fmt.Sprintf("https://%s/api/v4/projects/%s/repository/files/%s/raw?ref=%s",
		r.host, encodedProject, encodedFile, url.QueryEscape(version))
}

// AuthHeader returns the GitLab PRIVATE-TOKEN header when a token is
// configured for this host.
func (r *ForgeHostRepository) AuthHeader() (name, value string, ok bool) {
	if r.token == "" {
		return "", "", false
	}

	return "PRIVATE-TOKEN", r.token, true
}

// TarballURL builds a GitLab repository-archive API URL for version.
func (r *ForgeHostRepository) TarballURL(version string) string {
	encodedProject := url.QueryEscape(r.projectPath)

	return fmt.Sprintf("https://%s/api/v4/projects/%s/repository/archive.tar.gz?sha=%s",
		r.host, encodedProject, url.QueryEscape(version))
}
