package browser

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
)

// BlockedURLError is returned for addresses goto-page refuses to load while
// blockPrivateNetworks is on.
type BlockedURLError struct {
	URL    string
	Reason string
}

func (e *BlockedURLError) Error() string {
	return fmt.Sprintf("URL blocked: %s", e.Reason)
}

var metadataHosts = []string{
	"metadata.google.internal",
	"metadata.goog",
	"kubernetes.default.svc",
	"kubernetes.default",
	"metadata",
}

// CheckPublicURL refuses URLs whose host is, or resolves to, a loopback,
// private, link-local, multicast or unspecified address, or is a known cloud
// metadata name. Numeric tricks like 127.1 or 2130706433 are caught because
// the host is resolved before checking.
func CheckPublicURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &BlockedURLError{URL: rawURL, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return &BlockedURLError{URL: rawURL, Reason: fmt.Sprintf("scheme %q not allowed, only http/https", u.Scheme)}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return &BlockedURLError{URL: rawURL, Reason: "empty hostname"}
	}
	for _, mh := range metadataHosts {
		if host == mh || strings.HasSuffix(host, "."+mh) {
			return &BlockedURLError{URL: rawURL, Reason: fmt.Sprintf("cloud metadata hostname blocked: %s", host)}
		}
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else if ips, err = net.LookupIP(host); err != nil {
		return &BlockedURLError{URL: rawURL, Reason: fmt.Sprintf("DNS resolution failed: %v", err)}
	}

	for _, ip := range ips {
		if reason := blockedReason(ip); reason != "" {
			L_debug("browser: blocked navigation", "url", rawURL, "ip", ip.String(), "reason", reason)
			return &BlockedURLError{URL: rawURL, Reason: fmt.Sprintf("%s (%s resolves to %s)", reason, host, ip)}
		}
	}
	return nil
}

func blockedReason(ip net.IP) string {
	switch {
	case ip.IsLoopback():
		return "loopback address blocked"
	case ip.IsPrivate():
		return "private network address blocked"
	case ip.IsLinkLocalUnicast():
		return "link-local address blocked"
	case ip.IsMulticast(), ip.IsLinkLocalMulticast(), ip.IsInterfaceLocalMulticast():
		return "multicast address blocked"
	case ip.IsUnspecified():
		return "unspecified address blocked"
	}
	return ""
}
