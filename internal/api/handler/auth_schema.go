package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,max=256,username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=256,special"`
}

type loginRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse carries the token clients send back in the Authorization
// header. The field is named cookie for compatibility with existing clients.
type sessionResponse struct {
	Status string `json:"status"`
	Cookie string `json:"cookie"`
}

type statusResponse struct {
	Status string `json:"status"`
}

const statusSuccess = "success"
