package logging

import (
	"strings"
)

// secretKeyPatterns are substrings that mark an attribute or env key as sensitive.
// Keys are matched case-insensitively.
var secretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes are value prefixes of well-known API tokens.
var tokenPrefixes = []string{
	"ghp_",
	"gho_",
	"ghu_",
	"ghs_",
	"ghr_",
	"sk-",
	"AKIA",
	"xoxb-",
	"xoxp-",
}

// ShouldMask reports whether key names a value that is likely sensitive.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskValue masks a sensitive value, keeping the last four characters of
// values longer than four characters. Placeholders such as ${GITHUB_TOKEN}
// are not secrets and are returned unchanged.
func MaskValue(value string) string {
	if IsPlaceholder(value) {
		return value
	}
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskEnv returns a copy of env with sensitive values masked.
func MaskEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	masked := make(map[string]string, len(env))
	for k, v := range env {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// IsPlaceholder reports whether value is entirely an unresolved ${VAR} or $VAR reference.
func IsPlaceholder(value string) bool {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return !strings.ContainsAny(value[2:len(value)-1], "${} ")
	}
	if strings.HasPrefix(value, "$") && len(value) > 1 {
		return !strings.ContainsAny(value[1:], "${} ")
	}
	return false
}
