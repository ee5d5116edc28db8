package shared

// Scope is the branch visibility of the caller.
// A superadmin is unscoped; everybody else is pinned to BranchID.
type Scope struct {
	BranchID   string
	Superadmin bool
}

// AllBranches is the unrestricted scope used by schedulers and seeders
var AllBranches = Scope{Superadmin: true}

// BranchScope pins the caller to one branch
func BranchScope(branchID string) Scope {
	return Scope{BranchID: branchID}
}

// Resolve returns the branch a query or mutation should be restricted to.
// An empty result means all branches. A scoped caller asking for another
// branch gets ErrForbidden.
func (s Scope) Resolve(requested string) (string, error) {
	if s.Superadmin {
		return requested, nil
	}
	if requested != "" && requested != s.BranchID {
		return "", ErrForbidden
	}
	return s.BranchID, nil
}

// Allows reports whether the caller may touch a record owned by branchID
func (s Scope) Allows(branchID string) bool {
	return s.Superadmin || s.BranchID == branchID
}
