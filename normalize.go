package liqpay

import (
	"github.com/shopspring/decimal"
)

type operationKind int

const (
	opAPI operationKind = iota
	opForm
)

func (k operationKind) String() string {
	switch k {
	case opAPI:
		return "api request"
	case opForm:
		return "form generation"
	default:
		return "unknown"
	}
}

// prepare copies params and injects the merchant public key.
func (c *Client) prepare(params Params) Params {
	out := params.Clone()
	out["public_key"] = c.publicKey
	return out
}

// normalize returns a validated, defaulted copy of params for the given
// operation. The caller's map is never modified.
func (c *Client) normalize(params Params, kind operationKind) (Params, error) {
	out := c.prepare(params)
	if kind == opForm {
		if err := checkRequirements(out, c.protocol.requirements); err != nil {
			return nil, err
		}
		out["language"] = c.protocol.language(out.String("language"))
		if currency, ok := out["currency"].(string); ok {
			out["currency"] = c.protocol.canonicalCurrency(currency)
		}
		out["sandbox"] = flag(out["sandbox"])
	}
	coerceBools(out)
	exactFloats(out)
	return out, nil
}

// exactFloats replaces float values with their shortest exact decimal so
// serialization never depends on float formatting.
func exactFloats(p Params) {
	for k, v := range p {
		switch f := v.(type) {
		case float64:
			p[k] = decimal.NewFromFloat(f)
		case float32:
			p[k] = decimal.NewFromFloat32(f)
		}
	}
}
