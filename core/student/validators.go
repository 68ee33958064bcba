package student

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/tuition/core"
)

var (
	levelTag     = "level"
	levelText    = "{0} must be one of the registered levels"
	levelHint    = "{0} must be one of the registered levels; did you mean {1}?"
	levelMinSim  = .5
	levelHintKey = "level_hint"

	paymentStatusTag  = "payment_status"
	paymentStatusText = "{0} must be one of Paid, Pending or Overdue"

	transportAreaTag  = "transport_area"
	transportAreaText = "{0} must be one of Inside Limit, Outside Limit or N/A"

	transportAreaRequiredTag  = "transport_area_required"
	transportAreaRequiredText = "transport area is required"
)

// InitValidators registers the student validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	_ = validate.RegisterTranslation(
		levelTag, translator,
		func(t ut.Translator) error {
			if err := t.Add(levelTag, levelText, false); err != nil {
				return err
			}
			return t.Add(levelHintKey, levelHint, false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			if s, ok := fe.Value().(string); ok {
				if match := ClosestLevel(s); match != "" {
					msg, _ := t.T(levelHintKey, fe.Field(), fmt.Sprintf("%q", match))
					return msg
				}
			}
			msg, _ := t.T(levelTag, fe.Field())
			return msg
		},
	)

	_ = validate.RegisterValidation(paymentStatusTag, func(fl validator.FieldLevel) bool {
		return IsPaymentStatus(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, paymentStatusTag, paymentStatusText)

	_ = validate.RegisterValidation(transportAreaTag, func(fl validator.FieldLevel) bool {
		return contains(TransportAreas, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, transportAreaTag, transportAreaText)

	validate.RegisterStructValidation(studentStructValidation, NewStudent{})
	core.RegisterCustomTranslation(validate, translator, transportAreaRequiredTag, transportAreaRequiredText)
}

// Validate cleans & validates the registration form.
// The transport area is normalized to N/A when transport is not used.
func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.clean()
	if ns.Transport == core.No {
		ns.TransportArea = AreaNone
	}
	return validate.Struct(ns)
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.NewStudent.clean()
	us.PaymentStatus = core.CleanString(us.PaymentStatus)
	if us.Transport == core.No {
		us.TransportArea = AreaNone
	}
	return validate.Struct(us)
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.clean()
	return validate.Struct(su)
}

// ClosestLevel returns the registered level most similar to s, or "" if none is close enough.
func ClosestLevel(s string) string {
	s = strings.ToLower(core.CleanString(s))
	if s == "" {
		return ""
	}
	var (
		best  string
		ratio float64
	)
	for _, lvl := range Levels {
		r := difflib.NewMatcher(strings.Split(s, ""), strings.Split(strings.ToLower(lvl), "")).Ratio()
		if r > ratio {
			best, ratio = lvl, r
		}
	}
	if ratio < levelMinSim {
		return ""
	}
	return best
}

// Custom Validators

func levelValidation(fl validator.FieldLevel) bool {
	return IsLevel(fl.Field().String())
}

// studentStructValidation requires a real transport area iff transport is used.
func studentStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewStudent)
	if !ok {
		return
	}
	if ns.Transport == core.Yes && (ns.TransportArea == "" || ns.TransportArea == AreaNone) {
		sl.ReportError(ns.TransportArea, "transportArea", "TransportArea", transportAreaRequiredTag, "")
	}
}
