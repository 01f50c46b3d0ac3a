package enrichment

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NotDetermined is reported wherever a value is undefined: an odds ratio with
// a zero denominator, or corrections of an empty batch.
const NotDetermined = "N.D."

// OddsRatio is either a number or N.D.
type OddsRatio struct {
	Value   float64
	Defined bool
}

// DefinedOddsRatio wraps a finite ratio; infinities and NaN are N.D.
func DefinedOddsRatio(v float64) OddsRatio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return OddsRatio{}
	}
	return OddsRatio{Value: v, Defined: true}
}

func (o OddsRatio) String() string {
	return formatMaybe(o.Value, o.Defined)
}

func (o OddsRatio) MarshalJSON() ([]byte, error) {
	return marshalMaybe(o.Value, o.Defined)
}

func (o *OddsRatio) UnmarshalJSON(data []byte) error {
	return unmarshalMaybe(data, &o.Value, &o.Defined)
}

// CorrectedPValue is a corrected p-value or N.D. when the correction had no
// input.
type CorrectedPValue struct {
	Value   float64
	Defined bool
}

func (c CorrectedPValue) String() string {
	return formatMaybe(c.Value, c.Defined)
}

func (c CorrectedPValue) MarshalJSON() ([]byte, error) {
	return marshalMaybe(c.Value, c.Defined)
}

func (c *CorrectedPValue) UnmarshalJSON(data []byte) error {
	return unmarshalMaybe(data, &c.Value, &c.Defined)
}

func formatMaybe(v float64, defined bool) string {
	if !defined {
		return NotDetermined
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func marshalMaybe(v float64, defined bool) ([]byte, error) {
	if !defined {
		return json.Marshal(NotDetermined)
	}
	return json.Marshal(v)
}

func unmarshalMaybe(data []byte, v *float64, defined *bool) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == NotDetermined || s == "" {
			*v, *defined = 0, false
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*v, *defined = f, true
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v, *defined = 0, false
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	*defined = true
	return nil
}
