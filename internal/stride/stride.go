package stride

import "strings"

type Category string

const (
	Spoofing              Category = "Spoofing"
	Tampering             Category = "Tampering"
	Repudiation           Category = "Repudiation"
	InformationDisclosure Category = "Information Disclosure"
	DenialOfService       Category = "Denial of Service"
	ElevationOfPrivilege  Category = "Elevation of Privilege"
)

// Default: для типов, которые не удалось распознать.
const Default = Spoofing

var categories = []Category{
	Spoofing,
	Tampering,
	Repudiation,
	InformationDisclosure,
	DenialOfService,
	ElevationOfPrivilege,
}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Normalize: сравнение без учёта регистра, сначала точное, потом по
// подстроке (сгенерированные типы часто с лишним текстом).
func Normalize(input string) (Category, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	if cleaned == "" {
		return "", false
	}

	for _, c := range categories {
		if cleaned == strings.ToLower(string(c)) {
			return c, true
		}
	}
	for _, c := range categories {
		if strings.Contains(cleaned, strings.ToLower(string(c))) {
			return c, true
		}
	}
	return "", false
}

func NormalizeOrDefault(input string) Category {
	if c, ok := Normalize(input); ok {
		return c
	}
	return Default
}
