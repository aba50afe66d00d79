package secrets

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

var defaultSecretFields = []string{
	"branch_secret", "branch_key", "secret", "api_key", "apikey",
}

func init() {
	for _, field := range defaultSecretFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// MaskValues returns a masked copy of resolved secrets for safe logging.
func MaskValues(values map[Reference]SecretValue) map[string]any {
	if len(values) == 0 {
		return nil
	}
	masked := make(map[string]any, len(values))
	for ref, val := range values {
		masked[ref.Key] = Mask(string(val.Data))
	}
	return masked
}

// Mask obscures all but the outer characters of a secret string.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
