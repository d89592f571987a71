package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/geeky-hamster/Quizme/core"
)

var (
	quizWindowTag  = "quizwindow"
	quizWindowText = "End date must be after start date"

	optionTag  = "option"
	optionText = "Correct option must be between 1 and 4"
)

// InitValidators registers the catalog validations and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(quizStructValidation, QuizInput{})
	core.RegisterCustomTranslation(validate, translator, quizWindowTag, quizWindowText)
	_ = validate.RegisterValidation(optionTag, optionValidation)
	core.RegisterCustomTranslation(validate, translator, optionTag, optionText)
}

// quizStructValidation checks that the activity window is not empty.
func quizStructValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(QuizInput)
	if !ok {
		return
	}
	start, err := core.ParseTimestamp(in.StartDate)
	if err != nil {
		return
	}
	end, err := core.ParseTimestamp(in.EndDate)
	if err != nil {
		return
	}
	if !start.Before(end) {
		sl.ReportError(in.EndDate, "end_date", "EndDate", quizWindowTag, "")
	}
}

// optionValidation checks that an answer index designates one of the 4 options.
func optionValidation(fl validator.FieldLevel) bool {
	opt := fl.Field().Int()
	return opt >= 1 && opt <= 4
}
