package domain

import "errors"

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get profile"
	MessageSuccessUpdateUser       = "profile updated successfully"
	MessageSuccessSendVerifyEmail  = "verification email sent"
	MessageSuccessVerifyEmail      = "email verified successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get profile"
	MessageFailedUpdateUser       = "failed to update profile"
	MessageFailedSendVerifyEmail  = "failed to send verification email"
	MessageFailedVerifyEmail      = "failed to verify email"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrCredentialsInvalid = errors.New("invalid email or password")
	ErrSelfSubscription   = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed  = errors.New("subscription already exists")
	ErrNotSubscribed      = errors.New("subscription does not exist")
)

type (
	RegisterUserRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"max=150"`
		LastName  string `json:"last_name" validate:"max=150"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	RegisterUserResponse struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	UpdateUserRequest struct {
		Username  string `json:"username,omitempty" validate:"omitempty,max=150"`
		FirstName string `json:"first_name,omitempty" validate:"omitempty,max=150"`
		LastName  string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	}

	// UserResponse is the user projection embedded in recipe reads and
	// subscription listings. IsSubscribed is relative to the requester and
	// always false for anonymous callers.
	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	SubscriptionResponse struct {
		UserResponse
		RecipesCount int64                 `json:"recipes_count"`
		Recipes      []RecipeShortResponse `json:"recipes"`
	}
)
