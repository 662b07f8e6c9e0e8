package services

import (
	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
)

// ResolveCustomValues checks supplied values against a template schema and fills
// in defaults for parameters the caller left out. The result follows schema order,
// so the same schema and input always resolve identically.
func ResolveCustomValues(schema models.CustomParams, supplied []models.CustomParamValue) (models.CustomParamValues, error) {
	index := make(map[string]int, len(schema))
	for i, p := range schema {
		index[p.Name] = i
	}

	given := make(map[int]models.CustomParamValue, len(supplied))
	for _, v := range supplied {
		pos, ok := index[v.Name]
		if !ok {
			return nil, apperr.Newf(apperr.InvalidParameterValue, "custom_values", "unknown parameter %q", v.Name)
		}
		if _, dup := given[pos]; dup {
			return nil, apperr.Newf(apperr.InvalidParameterValue, "custom_values", "parameter %q supplied more than once", v.Name)
		}
		if err := checkValue(schema[pos], v); err != nil {
			return nil, err
		}
		given[pos] = v
	}

	resolved := make(models.CustomParamValues, len(schema))
	for i, p := range schema {
		if v, ok := given[i]; ok {
			resolved[i] = normalize(p, v)
			continue
		}
		resolved[i] = p.DefaultValue()
	}
	return resolved, nil
}

func checkValue(p models.CustomParam, v models.CustomParamValue) error {
	field := "custom_values." + p.Name
	if v.Kind != p.Kind {
		return apperr.Newf(apperr.InvalidParameterValue, field, "expected %s value, got %q", p.Kind, v.Kind)
	}
	switch p.Kind {
	case models.ParamInteger, models.ParamDecimal:
		if v.Int < p.Min || v.Int > p.Max {
			return apperr.Newf(apperr.InvalidParameterValue, field, "%d outside [%d, %d]", v.Int, p.Min, p.Max)
		}
	case models.ParamBoolean:
	case models.ParamChoice:
		if int(v.Index) >= len(p.Options) {
			return apperr.Newf(apperr.InvalidParameterValue, field, "choice index %d out of range for %d options", v.Index, len(p.Options))
		}
	default:
		return apperr.Newf(apperr.InvalidParameterValue, field, "unknown parameter kind %q", p.Kind)
	}
	return nil
}

// normalize drops payload fields that do not belong to the parameter's kind.
func normalize(p models.CustomParam, v models.CustomParamValue) models.CustomParamValue {
	switch p.Kind {
	case models.ParamInteger, models.ParamDecimal:
		return models.CustomParamValue{Name: p.Name, Kind: p.Kind, Int: v.Int}
	case models.ParamBoolean:
		return models.CustomParamValue{Name: p.Name, Kind: p.Kind, Bool: v.Bool}
	default:
		return models.CustomParamValue{Name: p.Name, Kind: p.Kind, Index: v.Index}
	}
}
