package listquery

import "pms/internal/domain"

// ScopeSpec describes how one entity type maps the access rules onto its
// columns. Public is the predicate anyone may see; Owner and Member resolve
// the principal's ownership/membership relations, typically via an EXISTS
// subquery so out-of-scope rows are never fetched.
type ScopeSpec struct {
	Public Cond
	Owner  func(principalID int64) Cond
	Member func(principalID int64) Cond
}

// ComputeScope derives the access-scope predicate for a principal. It never
// returns an empty predicate: admins see every row, anonymous callers see
// public rows only, everyone else sees public rows plus rows they own or
// hold a membership on.
func ComputeScope(p domain.Principal, spec ScopeSpec) Cond {
	if p.IsAdmin() {
		return True()
	}
	if p.Anonymous {
		if spec.Public.Expr == "" {
			return False()
		}
		return spec.Public
	}

	conds := make([]Cond, 0, 3)
	if spec.Public.Expr != "" {
		conds = append(conds, spec.Public)
	}
	if spec.Owner != nil {
		conds = append(conds, spec.Owner(p.ID))
	}
	if spec.Member != nil {
		conds = append(conds, spec.Member(p.ID))
	}
	return or(conds...)
}
