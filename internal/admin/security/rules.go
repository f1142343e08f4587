package security

import (
	"net/http"
	"path"
	"strings"

	"github.com/aussiebroadwan/blogadmin/pkg/antpath"
)

// AccessKind is what a rule demands of a request.
type AccessKind int

const (
	AccessPermitAll AccessKind = iota
	AccessAuthenticated
	AccessHasAuthority
	AccessDenyAll
)

func (k AccessKind) String() string {
	switch k {
	case AccessPermitAll:
		return "permitAll"
	case AccessAuthenticated:
		return "authenticated"
	case AccessHasAuthority:
		return "hasAuthority"
	case AccessDenyAll:
		return "denyAll"
	default:
		return "unknown"
	}
}

// Access is the requirement attached to a rule.
type Access struct {
	Kind AccessKind

	// Authorities are alternatives for AccessHasAuthority.
	Authorities []string
}

var (
	PermitAll     = Access{Kind: AccessPermitAll}
	Authenticated = Access{Kind: AccessAuthenticated}
	DenyAll       = Access{Kind: AccessDenyAll}
)

// HasAuthority requires any one of the given authorities.
func HasAuthority(authorities ...string) Access {
	return Access{Kind: AccessHasAuthority, Authorities: authorities}
}

// Decision is the outcome of checking an Access against a principal.
type Decision int

const (
	// DecisionGrant lets the request through.
	DecisionGrant Decision = iota

	// DecisionUnauthenticated sends the request to the entry point.
	DecisionUnauthenticated

	// DecisionDenied sends the request to the access-denied handler.
	DecisionDenied
)

// Evaluate checks the access against p, which is nil for anonymous
// requests.
func (a Access) Evaluate(p *Principal) Decision {
	switch a.Kind {
	case AccessPermitAll:
		return DecisionGrant
	case AccessAuthenticated:
		if p == nil {
			return DecisionUnauthenticated
		}
		return DecisionGrant
	case AccessHasAuthority:
		if p == nil {
			return DecisionUnauthenticated
		}
		if p.HasAuthority(a.Authorities...) {
			return DecisionGrant
		}
		return DecisionDenied
	default:
		if p == nil {
			return DecisionUnauthenticated
		}
		return DecisionDenied
	}
}

// Rule matches requests by method and path. An empty Method matches every
// method and no patterns match every path.
type Rule struct {
	Method   string
	Patterns []antpath.Pattern
	Access   Access
}

// NewRule compiles the patterns of a rule.
func NewRule(method string, access Access, patterns ...string) Rule {
	r := Rule{Method: method, Access: access}
	for _, p := range patterns {
		r.Patterns = append(r.Patterns, antpath.Compile(p))
	}
	return r
}

// AnyRequest matches everything.
func AnyRequest(access Access) Rule {
	return Rule{Access: access}
}

// Matches reports whether the rule applies to the request line. p must
// already be normalised.
func (r Rule) Matches(method, p string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if len(r.Patterns) == 0 {
		return true
	}
	for _, pat := range r.Patterns {
		if pat.Match(p) {
			return true
		}
	}
	return false
}

// RuleSet evaluates rules first-match in declaration order.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns a copy of the rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Access returns the access of the first rule matching the request. A
// request no rule matches must be authenticated.
func (rs *RuleSet) Access(method, rawPath string) Access {
	p := NormalizePath(rawPath)
	for _, r := range rs.rules {
		if r.Matches(method, p) {
			return r.Access
		}
	}
	return Authenticated
}

// NormalizePath cleans dot segments and duplicate slashes but keeps a
// trailing slash, which ant patterns treat as significant.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// Static assets and API docs are readable without a token.
var staticPatterns = []string{
	"/",
	"/*.html",
	"/favicon.ico",
	"/**/*.html",
	"/**/*.css",
	"/**/*.js",
	"/swagger-resources/**",
	"/v2/api-docs/**",
}

var operationalPatterns = []string{
	"/livez",
	"/readyz",
	"/metrics",
	"/.well-known/jwks.json",
}

// DefaultRules is the rule set of the admin service. permitAll adds a
// "/**" permitAll rule in front of the catch-all, which opens every path.
func DefaultRules(permitAll bool) *RuleSet {
	rules := []Rule{
		NewRule(http.MethodGet, PermitAll, staticPatterns...),
		NewRule("", PermitAll, "/login"),
		NewRule(http.MethodOptions, PermitAll),
		NewRule(http.MethodGet, PermitAll, operationalPatterns...),
	}
	if permitAll {
		rules = append(rules, NewRule("", PermitAll, "/**"))
	}
	rules = append(rules, AnyRequest(Authenticated))
	return NewRuleSet(rules...)
}
