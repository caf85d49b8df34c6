package model

// 用户角色
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User 当前操作人：管理员可以看到并操作全部订单，成员只能操作自己名下的订单
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAccess 是否有权读写该订单
func (u *User) CanAccess(order *Order) bool {
	if u == nil || order == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return order.Owner == u.DisplayName
}

// CanManageOwner 是否有权处理归属于owner名下的数据
func (u *User) CanManageOwner(owner string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return owner == u.DisplayName
}

// OperatorName 操作人展示名，未登录时记为"系统"
func (u *User) OperatorName() string {
	if u == nil || u.DisplayName == "" {
		return "系统"
	}
	return u.DisplayName
}
