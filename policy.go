package bookshelf

import "strings"

// RouteRule binds a method and path prefix to the minimum role required to
// pass. Method "*" matches every verb.
type RouteRule struct {
	Method      string
	PathPrefix  string
	MinimumRole UserRole
}

// RoutePolicy is an explicit, ordered route-to-role table. Rules are
// evaluated in order and the first match wins, so narrow rules must be
// registered before broad ones.
type RoutePolicy struct {
	rules       []RouteRule
	defaultRole UserRole
}

// NewRoutePolicy creates a policy whose unmatched guarded routes require
// defaultRole.
func NewRoutePolicy(defaultRole UserRole) *RoutePolicy {
	return &RoutePolicy{defaultRole: defaultRole}
}

// Require appends a rule to the policy.
func (p *RoutePolicy) Require(method, pathPrefix string, role UserRole) *RoutePolicy {
	p.rules = append(p.rules, RouteRule{
		Method:      strings.ToUpper(strings.TrimSpace(method)),
		PathPrefix:  pathPrefix,
		MinimumRole: role,
	})
	return p
}

// MinimumRoleFor resolves the role required for a request. Guarded routes
// with no explicit rule fall back to the policy default. The return type is
// string so the middleware can consume the policy without an import cycle.
func (p *RoutePolicy) MinimumRoleFor(method, path string) string {
	method = strings.ToUpper(method)
	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		if strings.HasPrefix(path, rule.PathPrefix) {
			return string(rule.MinimumRole)
		}
	}
	return string(p.defaultRole)
}

// Rules returns a copy of the registered rules, mostly for logging.
func (p *RoutePolicy) Rules() []RouteRule {
	out := make([]RouteRule, len(p.rules))
	copy(out, p.rules)
	return out
}
