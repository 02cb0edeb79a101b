// Package version reports the build version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
)

const (
	// AppName is printed in the banner
	AppName = "fxdash"

	// ReleasesURL is the endpoint queried for the latest release
	ReleasesURL = "https://api.github.com/repos/studiowebux/fxdash/releases/latest"

	checkTimeout = 5 * time.Second
)

// Version is set at build time with -ldflags "-X .../version.Version=1.2.3"
var Version = "0.1.0-dev"

// Release is the subset of the release document we read
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the outcome of a release check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Banner renders the application name as ASCII art
func Banner() string {
	return figure.NewFigure(AppName, "cybermedium", true).String()
}

// Checker queries a release endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a checker for the public release endpoint
func NewChecker() *Checker {
	return &Checker{URL: ReleasesURL, Client: &http.Client{Timeout: checkTimeout}}
}

// Check reports whether a release newer than current exists
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", AppName+"/"+current)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Update{}, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return Update{
		Available: latest != "" && IsNewer(latest, strings.TrimPrefix(current, "v")),
		Latest:    latest,
		URL:       release.HTMLURL,
	}, nil
}

// IsNewer compares dotted numeric versions. Pre-release and build suffixes
// are ignored, so 1.2.0-beta equals 1.2.0.
func IsNewer(latest, current string) bool {
	l, c := parse(latest), parse(current)
	n := max(len(l), len(c))
	for len(l) < n {
		l = append(l, 0)
	}
	for len(c) < n {
		c = append(c, 0)
	}

	for i := 0; i < n; i++ {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func parse(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
