package indicator

import (
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

func intParam(params []any, index int, name string) (int, error) {
	value, ok := params[index].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if value <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, value)
	}

	return value, nil
}

func floatParam(params []any, index int, name string) (float64, error) {
	switch value := params[index].(type) {
	case float64:
		if value <= 0 {
			return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be positive, got %v", name, value)
		}

		return value, nil
	case int:
		return floatParam([]any{float64(value)}, 0, name)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}
