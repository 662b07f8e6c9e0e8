package services

import "product-template-service/internal/apperr"

// AccessControl holds the registry roles. The admin is always a governance member.
type AccessControl struct {
	admin   string
	members map[string]struct{}
}

func NewAccessControl(admin string, members []string) (AccessControl, error) {
	if admin == "" {
		return AccessControl{}, apperr.New(apperr.InvalidInput, "admin", "admin identity is required")
	}
	set := map[string]struct{}{admin: {}}
	for _, m := range members {
		if m != "" {
			set[m] = struct{}{}
		}
	}
	return AccessControl{admin: admin, members: set}, nil
}

func (a AccessControl) Admin() string { return a.admin }

func (a AccessControl) IsAdmin(caller string) bool { return caller != "" && caller == a.admin }

func (a AccessControl) requireAdmin(caller string) error {
	if !a.IsAdmin(caller) {
		return apperr.New(apperr.Unauthorized, "caller", "admin only")
	}
	return nil
}

func (a AccessControl) requireMember(caller string) error {
	if _, ok := a.members[caller]; !ok || caller == "" {
		return apperr.New(apperr.Unauthorized, "caller", "governance members only")
	}
	return nil
}

func requireCreator(caller, creator string) error {
	if caller == "" || caller != creator {
		return apperr.New(apperr.Unauthorized, "caller", "template creator only")
	}
	return nil
}
