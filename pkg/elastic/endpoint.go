package elastic

import (
	"net/url"
	"strings"
)

// AllIndices is the engine alias addressing every index in the cluster,
// used when the endpoint path names no index.
const AllIndices = "_all"

// ParseEndpoint splits a cluster endpoint URL into the cluster base address
// and the target index name. The index is the URL path with its leading
// slash trimmed; an empty path selects AllIndices. The connection is not
// tested here; validation is limited to the scheme and host.
func ParseEndpoint(raw string) (cluster, index string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", &ConfigError{Reason: "invalid cluster endpoint", Err: err}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", &ConfigError{Reason: "cluster endpoint scheme must be http or https"}
	}
	if u.Host == "" {
		return "", "", &ConfigError{Reason: "cluster endpoint has no host"}
	}

	index = strings.TrimPrefix(u.Path, "/")
	if index == "" {
		index = AllIndices
	}

	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	cluster = strings.TrimSuffix(u.String(), "/")

	return cluster, index, nil
}
