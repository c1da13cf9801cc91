// Package field defines the stored value types of the schema translator.
//
// Every column has one of the types declared here. Values are carried as
// type-tagged [Value]s so that constraint anchors, defaults and enumerators
// of any supported type can be compared without a shared Go type:
//
//	lo := field.MustParse(field.TypeInt32, 5)
//	hi := field.MustParse(field.TypeInt32, "3")
//	field.Compare(lo, hi) // 1
//
// # Intervals
//
// Range and length constraints are intervals whose endpoints are [Bound]s.
// A nil *Bound stands for an infinite endpoint:
//
//	upper := field.InclusiveBound(field.MustParse(field.TypeInt64, 10))
//	field.IsWithinInterval(v, nil, &upper)
//	field.FormatInterval(nil, &upper) // (-∞, 10]
//
// # Converters
//
// A [Converter] maps a member's source type to the type stored in the
// column. Named converters can be registered for model loaders:
//
//	field.RegisterConverter("cents", field.NewConverter(field.TypeDecimal, field.TypeInt64, toCents, fromCents))
package field
