package auth

import (
	"context"
	"strings"
)

// RBACConfig configures the simple RBAC authorizer.
type RBACConfig struct {
	// Roles defines role configurations.
	Roles map[string]RoleConfig

	// DefaultRole is assigned to identities without explicit roles.
	DefaultRole string
}

// RoleConfig defines permissions for a role.
type RoleConfig struct {
	// Permissions are explicit permission strings: "<action>",
	// "<func>:<action>" or "func:<func>:<action>". "*" matches anything and a
	// trailing "*" matches a func name prefix.
	Permissions []string

	// Inherits lists roles this role inherits from.
	Inherits []string

	// AllowedFuncs is a list of function name patterns this role can call.
	AllowedFuncs []string

	// DeniedFuncs is a list of function name patterns this role cannot call.
	// Deny takes precedence over every allow.
	DeniedFuncs []string

	// AllowedActions is a list of actions this role can perform.
	AllowedActions []string
}

// SimpleRBACAuthorizer provides simple role-based access control over
// function names.
type SimpleRBACAuthorizer struct {
	config RBACConfig
}

// NewSimpleRBACAuthorizer creates a new simple RBAC authorizer.
func NewSimpleRBACAuthorizer(config RBACConfig) *SimpleRBACAuthorizer {
	return &SimpleRBACAuthorizer{config: config}
}

// Name returns "simple_rbac".
func (a *SimpleRBACAuthorizer) Name() string {
	return "simple_rbac"
}

// Authorize checks if the identity is allowed to perform the action.
func (a *SimpleRBACAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return deny(req, "no identity provided")
	}

	for _, roleName := range a.collectRoles(req.Subject) {
		role, ok := a.config.Roles[roleName]
		if !ok {
			continue
		}
		if rolePermits(role, req) {
			return nil
		}
	}

	return deny(req, "no role permits this call")
}

// collectRoles expands the subject's roles breadth-first through Inherits.
// Cycles are tolerated.
func (a *SimpleRBACAuthorizer) collectRoles(subject *Identity) []string {
	queue := append([]string(nil), subject.Roles...)
	if len(queue) == 0 && a.config.DefaultRole != "" {
		queue = append(queue, a.config.DefaultRole)
	}

	seen := make(map[string]bool)
	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		result = append(result, current)

		if role, ok := a.config.Roles[current]; ok {
			queue = append(queue, role.Inherits...)
		}
	}
	return result
}

func rolePermits(role RoleConfig, req *AuthzRequest) bool {
	for _, denied := range role.DeniedFuncs {
		if matchPattern(denied, req.Func) {
			return false
		}
	}

	if len(role.AllowedFuncs) > 0 && !anyMatch(role.AllowedFuncs, req.Func) {
		return false
	}

	if len(role.AllowedActions) > 0 {
		allowed := false
		for _, action := range role.AllowedActions {
			if action == "*" || action == req.Action {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	for _, perm := range role.Permissions {
		if matchPermission(perm, req) {
			return true
		}
	}

	// An allow list that matched is a grant on its own.
	return len(role.AllowedFuncs) > 0
}

func anyMatch(patterns []string, value string) bool {
	for _, p := range patterns {
		if matchPattern(p, value) {
			return true
		}
	}
	return false
}

// matchPattern matches a pattern against a value.
// Supports "*" alone or as a trailing wildcard.
func matchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(value, prefix)
	}
	return pattern == value
}

func matchPermission(perm string, req *AuthzRequest) bool {
	parts := strings.Split(perm, ":")
	actionMatch := func(a string) bool { return a == "*" || a == req.Action }

	switch len(parts) {
	case 1:
		return actionMatch(parts[0])
	case 2:
		return matchPattern(parts[0], req.Func) && actionMatch(parts[1])
	case 3:
		return (parts[0] == "*" || parts[0] == "func") &&
			matchPattern(parts[1], req.Func) && actionMatch(parts[2])
	default:
		return false
	}
}

// Ensure SimpleRBACAuthorizer implements Authorizer
var _ Authorizer = (*SimpleRBACAuthorizer)(nil)
