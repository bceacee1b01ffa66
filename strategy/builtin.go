package strategy

import (
	"net"
	"os"
	"strings"

	"github.com/toggleworks/unleash-client-go/model"
)

// Parameter names used by the built-in strategies.
const (
	ParamUserIDs    = "userIds"
	ParamIPs        = "IPs"
	ParamHostNames  = "hostNames"
	ParamPercentage = "percentage"
	ParamGroupID    = "groupId"
	ParamRollout    = "rollout"
	ParamStickiness = "stickiness"
)

// DefaultStrategy is active for everyone.
type DefaultStrategy struct{}

//nolint:revive // no doc comment for standard method
func (DefaultStrategy) Name() string { return "default" }

//nolint:revive // no doc comment for standard method
func (DefaultStrategy) IsEnabled(map[string]string, model.Context) bool { return true }

// UserWithIDStrategy is active when the context user id appears in the comma-separated "userIds"
// parameter.
type UserWithIDStrategy struct{}

//nolint:revive // no doc comment for standard method
func (UserWithIDStrategy) Name() string { return "userWithId" }

//nolint:revive // no doc comment for standard method
func (UserWithIDStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	if ctx.UserID == "" {
		return false
	}
	return listContains(params[ParamUserIDs], ctx.UserID)
}

// RemoteAddressStrategy is active when the context remote address matches one of the entries of the
// comma-separated "IPs" parameter. Entries may be plain addresses or CIDR ranges.
type RemoteAddressStrategy struct{}

//nolint:revive // no doc comment for standard method
func (RemoteAddressStrategy) Name() string { return "remoteAddress" }

//nolint:revive // no doc comment for standard method
func (RemoteAddressStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	if ctx.RemoteAddress == "" {
		return false
	}
	remoteIP := net.ParseIP(ctx.RemoteAddress)
	for _, entry := range splitList(params[ParamIPs]) {
		if entry == ctx.RemoteAddress {
			return true
		}
		if remoteIP == nil || !strings.Contains(entry, "/") {
			continue
		}
		if _, network, err := net.ParseCIDR(entry); err == nil && network.Contains(remoteIP) {
			return true
		}
	}
	return false
}

// ApplicationHostnameStrategy is active when the host this process runs on appears in the
// comma-separated "hostNames" parameter. The comparison is case-insensitive.
type ApplicationHostnameStrategy struct {
	hostname string
}

// NewApplicationHostnameStrategy creates the strategy for the current host. The HOSTNAME environment
// variable takes precedence over the name reported by the operating system.
func NewApplicationHostnameStrategy() ApplicationHostnameStrategy {
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return ApplicationHostnameStrategy{hostname: strings.ToLower(hostname)}
}

//nolint:revive // no doc comment for standard method
func (ApplicationHostnameStrategy) Name() string { return "applicationHostname" }

//nolint:revive // no doc comment for standard method
func (s ApplicationHostnameStrategy) IsEnabled(params map[string]string, _ model.Context) bool {
	if s.hostname == "" {
		return false
	}
	return listContains(strings.ToLower(params[ParamHostNames]), s.hostname)
}

func splitList(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ret = append(ret, p)
		}
	}
	return ret
}

func listContains(list, value string) bool {
	for _, item := range splitList(list) {
		if item == value {
			return true
		}
	}
	return false
}
