package repoinfra

import "fmt"

// WikiHostRepository resolves files against a GitHub-style raw content
// host. It does not authenticate via header; a token, when present, is
// embedded into the URL as userinfo instead.
type WikiHostRepository struct {
	host        string
	projectPath string
	token       string
}

// FileURL builds a raw.githubusercontent.com-style URL for filePath at
// version.
func (r *WikiHostRepository) FileURL(version, filePath string) string {
	host := "raw.githubusercontent.com"

	if r.token != "" {
		return fmt.Sprintf("https://%s@%s/%s/%s/%s", r.token, host, r.projectPath, version, filePath)
	}

	return fmt.Sprintf("https://%s/%s/%s/%s", host, r.projectPath, version, filePath)
}

// AuthHeader always reports ok=false: this backend embeds credentials in
// the URL itself rather than a header.
func (r *WikiHostRepository) AuthHeader() (name, value string, ok bool) {
	return "", "", false
}

// TarballURL builds a GitHub codeload-style archive URL, which resolves
// for both branch and tag version refs.
func (r *WikiHostRepository) TarballURL(version string) string {
	if r.token != "" {
		return fmt.Sprintf("https://%s@github.com/%s/archive/%s.tar.gz", r.token, r.projectPath, version)
	}

	return fmt.Sprintf("https://github.com/%s/archive/%s.tar.gz", r.projectPath, version)
}
