package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ctchen222/tictactoe-ai/internal/game"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	Register(validate)
}

func GetValidator() *validator.Validate {
	return validate
}

// Register adds the game tags to v. It is also applied to gin's binding validator.
//
//	mark      "", "X" or "O"
//	gamemode  "pvp" or "pvc"
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("mark", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && game.Mark(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("gamemode", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && game.Mode(fl.Field().String()).Valid()
	})
}

// RegisterBinding adds the game tags to gin's binding validator.
func RegisterBinding() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}
