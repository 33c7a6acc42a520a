package tenants

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
)

// Resolver resolves the current organization (tenant) from an HTTP request.
// Every store query is scoped by the resolved org id, which is what makes
// the multi-tenant isolation boundary structural rather than advisory.
type Resolver interface {
	Resolve(r *http.Request) (orgID string, err error)
}

// Options controls resolution.
//
// Typical host-based setup:
//
//	BaseDomain:   "quiz.opencourse.io"
//	HostIsTenant: true               // {org}.quiz.opencourse.io
//
// Header override (for tests/internal routing):
//
//	HeaderKey: "X-Org"               // if present, takes precedence
type Options struct {
	BaseDomain   string // e.g. "quiz.opencourse.io" (no scheme)
	HostIsTenant bool   // true => {org}.{BaseDomain}
	HeaderKey    string // optional override header for org id
	DefaultOrg   string // optional fallback when org could not be inferred
}

func NewResolver(opts Options) Resolver {
	return &universalResolver{opts: opts}
}

type universalResolver struct {
	opts Options
}

func (u *universalResolver) Resolve(r *http.Request) (string, error) {
	// 1) Header override (highest priority)
	if u.opts.HeaderKey != "" {
		if v := strings.TrimSpace(r.Header.Get(u.opts.HeaderKey)); v != "" {
			org := sanitizeOrg(v)
			if org == "" {
				return "", errBadOrgToken
			}
			return org, nil
		}
	}

	// 2) Host-based org, e.g. {org}.quiz.opencourse.io
	if u.opts.HostIsTenant {
		if org := u.orgFromHost(r); org != "" {
			return org, nil
		}
	}

	// 3) Fallback default
	if u.opts.DefaultOrg != "" {
		org := sanitizeOrg(u.opts.DefaultOrg)
		if org == "" {
			return "", errBadOrgToken
		}
		return org, nil
	}

	return "", errNoOrg
}

// orgFromHost extracts {org} from {org}.{BaseDomain}.
func (u *universalResolver) orgFromHost(r *http.Request) string {
	host := hostWithoutPort(r.Host)
	base := strings.ToLower(strings.TrimSpace(u.opts.BaseDomain))
	if host == "" || base == "" {
		return ""
	}
	if strings.EqualFold(host, base) {
		return "" // bare base domain, no subdomain
	}
	suffix := "." + base
	if !strings.HasSuffix(strings.ToLower(host), suffix) {
		return ""
	}
	rest := host[:len(host)-len(suffix)]
	if rest == "" {
		return ""
	}
	labels := strings.Split(rest, ".")
	return sanitizeOrg(labels[0])
}

var (
	errNoOrg       = errors.New("tenants: could not resolve org from request")
	errBadOrgToken = errors.New("tenants: invalid org token")
)

var orgTokenRE = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,61}$`)

// sanitizeOrg lowercases and validates the org token (DNS-friendly pattern).
func sanitizeOrg(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !orgTokenRE.MatchString(s) {
		return ""
	}
	return s
}

func hostWithoutPort(h string) string {
	if h == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}
