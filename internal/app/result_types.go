package app

import "smartshodhai/internal/core"

// ProductListResult is returned by ListProducts and GetLowStock.
type ProductListResult struct {
	Products []core.Product
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// UserResult is returned by GetUser.
type UserResult struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
