package domain

import (
	"regexp"
	"strings"
)

// PRState is the review-service state of a pull request.
type PRState string

const (
	PRStateOpen    PRState = "open"
	PRStateMerged  PRState = "merged"
	PRStateClosed  PRState = "closed"
	PRStateUnknown PRState = "unknown"
)

// ParsePRState maps the review service vocabulary (OPEN, MERGED, CLOSED)
// to a PRState. Anything else is unknown.
func ParsePRState(s string) PRState {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN":
		return PRStateOpen
	case "MERGED":
		return PRStateMerged
	case "CLOSED":
		return PRStateClosed
	default:
		return PRStateUnknown
	}
}

// PullRequest identifies a created pull request.
type PullRequest struct {
	URL    string
	Number int
}

var (
	sshRemote   = regexp.MustCompile(`^git@([^:]+):(.+?)(?:\.git)?$`)
	httpsRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/(.+?)(?:\.git)?/?$`)
)

// RepositoryWebURL converts a remote URL (ssh or https) into a browsable
// https URL. Returns "" when the URL is not recognized.
func RepositoryWebURL(remoteURL string) string {
	u := strings.TrimSpace(remoteURL)
	if m := sshRemote.FindStringSubmatch(u); m != nil {
		return "https://" + m[1] + "/" + m[2]
	}
	if m := httpsRemote.FindStringSubmatch(u); m != nil {
		return "https://" + m[1] + "/" + m[2]
	}
	return ""
}
