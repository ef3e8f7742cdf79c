package risk

import "fmt"

// ValidationResult: ошибки по полям. Расчёт от проверки не зависит:
// Compute принимает что угодно, Validate может отклонить.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Validate: каждый указанный (не nil) фактор должен быть числом в [0, 9].
// Отсутствующие допустимы, неизвестные ключи игнорируются.
func Validate(f Factors) ValidationResult {
	if f == nil {
		return ValidationResult{Errors: []string{"risk factors object is required"}}
	}

	errs := []string{}
	for _, name := range FactorNames() {
		v, present := f[name]
		if !present || v == nil {
			continue
		}
		n, ok := ParseNumeric(v)
		if !ok || n < MinFactor || n > MaxFactor {
			errs = append(errs, fmt.Sprintf("%s must be a number between %d and %d", name, MinFactor, MaxFactor))
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
