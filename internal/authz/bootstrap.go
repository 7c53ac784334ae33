package authz

import (
	"fmt"

	"github.com/dujiao-next/marketcore/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleCustomer,
			Policies: []Policy{
				{Object: "/orders", Action: "GET"},
				{Object: "/orders", Action: "POST"},
				{Object: "/orders/preview", Action: "POST"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/no/:order_no", Action: "GET"},
				{Object: "/orders/:id/pay", Action: "POST"},
				{Object: "/orders/:id/receive", Action: "POST"},
				{Object: "/orders/:id/cancel", Action: "POST"},
				{Object: "/promotions/evaluate", Action: "POST"},
				{Object: "/red-packets/:promotion_id/claim", Action: "POST"},
				{Object: "/vouchers", Action: "GET"},
				{Object: "/vouchers/:code", Action: "GET"},
			},
		},
		{
			Role: constants.RoleMerchant,
			Policies: []Policy{
				{Object: "/merchant/orders", Action: "GET"},
				{Object: "/merchant/orders/:id", Action: "GET"},
				{Object: "/merchant/orders/:id/confirm", Action: "POST"},
				{Object: "/merchant/orders/:id/cancel", Action: "POST"},
				{Object: "/merchant/promotions", Action: "*"},
				{Object: "/merchant/promotions/*", Action: "*"},
			},
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: adminRootObject, Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		if err := s.ensureRole(role); err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
