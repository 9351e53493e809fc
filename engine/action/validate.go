package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/combat"
)

// validatorInstance caches struct metadata across calls.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("skill", validateSkill)
	_ = validatorInstance.RegisterValidation("ability", validateAbility)
	_ = validatorInstance.RegisterValidation("cover", validateCover)
}

func validateSkill(fl validator.FieldLevel) bool {
	_, ok := ability.SkillAbility(fl.Field().String())
	return ok
}

func validateAbility(fl validator.FieldLevel) bool {
	_, ok := ability.Parse(fl.Field().String())
	return ok
}

func validateCover(fl validator.FieldLevel) bool {
	_, ok := combat.ParseCover(fl.Field().String())
	return ok
}

// Validate checks the struct tags of a. Failures wrap ErrInvalidAction and
// name every offending field.
func Validate(a Action) error {
	if a == nil {
		return ErrUnsupportedAction
	}
	err := validatorInstance.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidAction, a.Kind(), strings.Join(msgs, ", "))
}
