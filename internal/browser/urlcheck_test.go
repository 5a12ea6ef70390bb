package browser

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		errMsg string // empty means allowed
	}{
		{"public ipv4", "https://93.184.215.14/lesson", ""},
		{"public ipv6", "https://[2606:2800:21f:cb07:6820:80da:af6b:8b2c]/", ""},

		{"file scheme", "file:///etc/passwd", "scheme"},
		{"javascript scheme", "javascript:alert(1)", "scheme"},
		{"no scheme", "example.com", "scheme"},
		{"empty host", "http:///path", "empty hostname"},

		{"loopback", "http://127.0.0.1:9222/json", "loopback"},
		{"loopback range", "http://127.255.255.255", "loopback"},
		{"ipv6 loopback", "http://[::1]", "loopback"},
		{"10/8", "http://10.0.0.1", "private"},
		{"172.16/12", "http://172.31.255.255", "private"},
		{"192.168/16", "http://192.168.1.1", "private"},
		{"metadata ip", "http://169.254.169.254/latest/meta-data/", "link-local"},
		{"gcp metadata", "http://metadata.google.internal", "cloud metadata hostname"},
		{"unspecified", "http://0.0.0.0", "unspecified"},
		{"multicast", "http://224.0.0.1", "multicast"},
		{"ipv4-mapped loopback", "http://[::ffff:127.0.0.1]", "loopback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPublicURL(tt.url)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var blocked *BlockedURLError
			require.ErrorAs(t, err, &blocked)
			assert.Equal(t, tt.url, blocked.URL)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBlockedReason(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"169.254.1.1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"ff02::1", true},
		{"::", true},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.blocked, blockedReason(net.ParseIP(tt.ip)) != "")
		})
	}
}
