package repository

import "errors"

var (
	ErrIngredientNotFound  = errors.New("ingredient not found")
	ErrIngredientNameTaken = errors.New("ingredient name already exists")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidInput        = errors.New("invalid input parameters")
)
