package validatex

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// ValidationFunc defines a function that validates a value
type ValidationFunc func(value any, param string) bool

var builtinValidationFuncs = map[string]ValidationFunc{
	"required": validateRequired,
	"min":      validateMin,
	"max":      validateMax,
	"oneof":    validateOneOf,
	"regex":    validateRegex,
	"alphanum": validateAlphaNum,
	"numeric":  validateNumeric,
}

var (
	customMu              sync.RWMutex
	customValidationFuncs = map[string]ValidationFunc{}
)

// RegisterValidationFunc registers a custom validation function
func RegisterValidationFunc(name string, fn ValidationFunc) {
	customMu.Lock()
	defer customMu.Unlock()
	customValidationFuncs[name] = fn
}

func getValidationFunc(name string) (ValidationFunc, bool) {
	customMu.RLock()
	fn, ok := customValidationFuncs[name]
	customMu.RUnlock()
	if ok {
		return fn, true
	}
	fn, ok = builtinValidationFuncs[name]
	return fn, ok
}

func validateRequired(value any, _ string) bool {
	return !isZero(value)
}

// measure returns the comparable size of a value: rune count for strings,
// length for collections, the number itself for numerics.
func measure(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		return float64(utf8.RuneCountInString(s)), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(rv.Len()), true
	default:
		return 0, false
	}
}

func validateMin(value any, param string) bool {
	limit, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return false
	}
	n, ok := measure(value)
	return ok && n >= limit
}

func validateMax(value any, param string) bool {
	limit, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return false
	}
	n, ok := measure(value)
	return ok && n <= limit
}

// validateOneOf takes space separated choices: `oneof=text interactive button`
func validateOneOf(value any, param string) bool {
	str := fmt.Sprintf("%v", value)
	for _, v := range strings.Fields(param) {
		if v == str {
			return true
		}
	}
	return false
}

var (
	regexMu    sync.Mutex
	regexCache = map[string]*regexp.Regexp{}
)

func validateRegex(value any, param string) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	regexMu.Lock()
	re, cached := regexCache[param]
	if !cached {
		var err error
		re, err = regexp.Compile(param)
		if err != nil {
			regexMu.Unlock()
			return false
		}
		regexCache[param] = re
	}
	regexMu.Unlock()
	return re.MatchString(str)
}

func validateAlphaNum(value any, _ string) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	for _, r := range str {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func validateNumeric(value any, _ string) bool {
	str, ok := value.(string)
	if !ok || str == "" {
		return false
	}
	for _, r := range str {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
