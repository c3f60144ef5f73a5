package model

import "strings"

// Role 参与沟通的角色
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// ParseRole 归一化角色标签；未知标签返回 false
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleSupplier, RoleAdmin:
		return r, true
	default:
		return r, false
	}
}

// Valid 是否为三种已知角色之一
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}
