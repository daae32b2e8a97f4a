package classroom

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

var (
	intGradeTag  = "intgrade"
	intGradeText = "grade must be a non-negative integer"
)

// InitValidators registers the classroom validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(intGradeTag, intGradeValidation)
	core.RegisterCustomTranslation(validate, translator, intGradeTag, intGradeText)
}

// intGradeValidation only allows non-negative integers (as a string or json.Number).
func intGradeValidation(fl validator.FieldLevel) bool {
	v, err := strconv.ParseInt(fl.Field().String(), 10, 64)
	return err == nil && v >= 0
}

func (gs GradeSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(gs)
}

func (ti *TeacherInvite) Validate(validate *validator.Validate) error {
	ti.Email = core.CleanString(ti.Email, true /* lower */)
	return validate.Struct(ti)
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Text = core.CleanString(na.Text)
	return validate.Struct(na)
}
