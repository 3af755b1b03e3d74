// Package params converts estimator coefficient state to and from the JSON
// parameter payload exchanged with the host:
//
//	{"coef":[1.5,-2],"intercept":0.25,"loss":"squared_error"}
//
// Floats are written in the shortest form that parses back to the same bits,
// so Decode(Encode(m)) reproduces coef and intercept exactly.
package params

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// Payload is the decoded parameter document.
type Payload struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	// Loss is informational; nil encodes as null.
	Loss *string `json:"loss"`
}

// FromEstimator snapshots est. A fresh estimator yields an empty coef and a
// zero intercept.
func FromEstimator(est model.Estimator) Payload {
	coef, intercept := est.Coefficients()
	if coef == nil {
		coef = []float64{}
	}
	p := Payload{Coef: coef}
	if len(intercept) > 0 {
		p.Intercept = intercept[0]
	}
	if loss := est.Loss(); loss != "" {
		p.Loss = &loss
	}
	return p
}

// Marshal renders p with keys in the order coef, intercept, loss.
func (p Payload) Marshal() ([]byte, error) {
	if err := errors.CheckNumericalStability("params.Encode", p.Coef, 0); err != nil {
		return nil, errors.NewValueError("params.Encode", "coefficients contain NaN or Inf and cannot be encoded as JSON")
	}
	if err := errors.CheckScalar("params.Encode", p.Intercept, 0); err != nil {
		return nil, errors.NewValueError("params.Encode", "intercept is NaN or Inf and cannot be encoded as JSON")
	}
	if p.Coef == nil {
		p.Coef = []float64{}
	}
	out, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "params.Encode")
	}
	return out, nil
}

// Encode serializes the estimator's current coefficient state.
func Encode(est model.Estimator) ([]byte, error) {
	return FromEstimator(est).Marshal()
}

// Decode parses a payload. coef and intercept are required; intercept may be
// a number or a one-element array. loss is optional and may be null. Unknown
// keys are ignored.
func Decode(text []byte) (Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(text, &raw); err != nil {
		return Payload{}, errors.NewMalformedPayloadError("", "not a JSON object", err)
	}
	if raw == nil {
		return Payload{}, errors.NewMalformedPayloadError("", "not a JSON object", nil)
	}

	var p Payload

	rawCoef, ok := raw["coef"]
	if !ok || isNull(rawCoef) {
		return Payload{}, errors.NewMalformedPayloadError("coef", "missing", nil)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(rawCoef, &elems); err != nil {
		return Payload{}, errors.NewMalformedPayloadError("coef", "must be an array of numbers", err)
	}
	p.Coef = make([]float64, len(elems))
	for i, e := range elems {
		v, err := number(e)
		if err != nil {
			return Payload{}, errors.NewMalformedPayloadError("coef", fmt.Sprintf("element %d is not a number", i), err)
		}
		p.Coef[i] = v
	}

	rawIntercept, ok := raw["intercept"]
	if !ok || isNull(rawIntercept) {
		return Payload{}, errors.NewMalformedPayloadError("intercept", "missing", nil)
	}
	intercept, err := scalarOrSingleton(rawIntercept)
	if err != nil {
		return Payload{}, errors.NewMalformedPayloadError("intercept", "must be a number or a one-element array", err)
	}
	p.Intercept = intercept

	if rawLoss, ok := raw["loss"]; ok && !isNull(rawLoss) {
		var loss string
		if err := json.Unmarshal(rawLoss, &loss); err != nil {
			return Payload{}, errors.NewMalformedPayloadError("loss", "must be a string or null", err)
		}
		p.Loss = &loss
	}

	return p, nil
}

// Apply installs the payload's coefficients on est.
func Apply(est model.Estimator, p Payload) error {
	return est.SetCoefficients(p.Coef, p.Intercept)
}

// SaveFile writes est's payload to path.
func SaveFile(path string, est model.Estimator) error {
	data, err := Encode(est)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "params: write %s", path)
	}
	return nil
}

// LoadFile reads and decodes the payload stored at path.
func LoadFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, errors.Wrapf(err, "params: read %s", path)
	}
	return Decode(data)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// number parses a JSON number, rejecting null, strings and out-of-range values.
func number(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, errors.New("null")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func scalarOrSingleton(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return 0, err
		}
		if len(elems) != 1 {
			return 0, errors.Newf("array has %d elements", len(elems))
		}
		return number(elems[0])
	}
	return number(trimmed)
}
