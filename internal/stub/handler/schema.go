package handler

import "github.com/beanbar/orderdesk/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"required,email"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN MANAGER EMPLOYEE CUSTOMER"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *domain.User `json:"user,omitempty"`
}

// --- Orders ---

type listOrdersQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDING CONFIRMED PREPARING READY COMPLETED CANCELLED"`
	Page   int    `query:"page"   validate:"omitempty,min=1"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
}

type updateOrderRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED PREPARING READY COMPLETED CANCELLED"`
	Notes  *string `json:"notes"  validate:"omitempty,max=500"`
}

type pageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type orderListResponse struct {
	Data []domain.Order `json:"data"`
	Meta pageMeta       `json:"meta"`
}
