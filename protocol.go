package liqpay

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/liqpay/liqpay-go/signature"
)

// Protocol is one historical LiqPay canonicalization and signing
// convention. The set is closed: use [ProtocolV3], [ProtocolV3Encoded] or
// [ProtocolLegacy].
type Protocol struct {
	name            string
	formPath        string
	requirements    []requirement
	currencies      []string
	currencyAliases map[string]string
	labels          map[string]string
	defaultLanguage string
	template        string
	formFields      func(secret string, params Params) ([]formField, error)
	apiPayload      func(secret string, params Params) (signedPayload, error)
}

// signedPayload is the data/signature pair posted to LiqPay.
type signedPayload struct {
	Data      string `json:"data"`
	Signature string `json:"signature"`
}

// requirement is one entry of a protocol's ordered form validation list.
// tag is a go-playground/validator tag evaluated against the field value.
type requirement struct {
	field string
	tag   string
}

var (
	// ProtocolV3 is the checkout 3 protocol as shipped by the reference
	// SDK: forms carry base64(JSON) signed in its encoded form, API calls
	// post and sign the raw JSON text.
	ProtocolV3 = &Protocol{
		name:            "3",
		formPath:        EndpointCheckout,
		requirements:    v3Requirements,
		currencies:      []string{"EUR", "UAH", "USD"},
		currencyAliases: map[string]string{},
		labels:          map[string]string{"uk": "Сплатити", "en": "Pay"},
		defaultLanguage: "uk",
		template:        checkoutFormTemplate,
		formFields:      encodedFormFields,
		apiPayload:      rawAPIPayload,
	}

	// ProtocolV3Encoded is checkout 3 with API calls posting and signing
	// base64(JSON), matching the form encoding.
	ProtocolV3Encoded = &Protocol{
		name:            "3-encoded",
		formPath:        EndpointCheckout,
		requirements:    v3Requirements,
		currencies:      []string{"EUR", "UAH", "USD"},
		currencyAliases: map[string]string{},
		labels:          map[string]string{"uk": "Сплатити", "en": "Pay"},
		defaultLanguage: "uk",
		template:        checkoutFormTemplate,
		formFields:      encodedFormFields,
		apiPayload:      encodedAPIPayload,
	}

	// ProtocolLegacy is the pre-v3 "pay" checkout: every parameter is a
	// hidden form input and the signature covers a fixed list of fields.
	ProtocolLegacy = &Protocol{
		name:     "legacy",
		formPath: EndpointLegacyPay,
		requirements: []requirement{
			{field: "amount", tag: "amount"},
			{field: "currency", tag: "currency=EUR UAH USD RUB RUR"},
			{field: "description", tag: "required"},
		},
		currencies:      []string{"EUR", "UAH", "USD", "RUB", "RUR"},
		currencyAliases: map[string]string{"RUR": "RUB"},
		labels:          map[string]string{"ru": "Оплатить", "uk": "Сплатити", "en": "Pay"},
		defaultLanguage: "ru",
		template:        legacyFormTemplate,
		formFields:      legacyFormFields,
		apiPayload:      rawAPIPayload,
	}
)

var v3Requirements = []requirement{
	{field: "amount", tag: "amount"},
	{field: "currency", tag: "currency=EUR UAH USD"},
	{field: "description", tag: "required"},
	{field: "version", tag: "required"},
	{field: "action", tag: "required"},
}

// legacySignatureFields are concatenated, in this order, after the
// private key to form the legacy signature.
var legacySignatureFields = []string{
	"amount", "currency", "public_key", "order_id", "type",
	"description", "result_url", "server_url",
}

// legacyFormParams are the parameters the legacy form renders as inputs.
var legacyFormParams = []string{
	"amount", "currency", "description", "language", "order_id",
	"public_key", "result_url", "sandbox", "server_url", "type",
}

var protocols = []*Protocol{ProtocolV3, ProtocolV3Encoded, ProtocolLegacy}

// ProtocolByName looks a protocol up by its [Protocol.Name].
func ProtocolByName(name string) (*Protocol, bool) {
	for _, p := range protocols {
		if strings.EqualFold(p.name, name) {
			return p, true
		}
	}
	return nil, false
}

// Name identifies the protocol ("3", "3-encoded", "legacy").
func (p *Protocol) Name() string { return p.name }

// String implements fmt.Stringer.
func (p *Protocol) String() string { return "liqpay protocol " + p.name }

// FormPath is the checkout form action, relative to the API base URL.
func (p *Protocol) FormPath() string { return p.formPath }

// Currencies lists the currency codes accepted by form generation,
// including deprecated aliases.
func (p *Protocol) Currencies() []string { return slices.Clone(p.currencies) }

// Languages lists the supported checkout languages.
func (p *Protocol) Languages() []string { return slices.Sorted(maps.Keys(p.labels)) }

// DefaultLanguage is used when the requested language is missing or
// unsupported.
func (p *Protocol) DefaultLanguage() string { return p.defaultLanguage }

// Label returns the localized pay button label, falling back to the
// default language.
func (p *Protocol) Label(language string) string {
	return p.labels[p.language(language)]
}

// language resolves the effective checkout language.
func (p *Protocol) language(requested string) string {
	if _, ok := p.labels[requested]; ok {
		return requested
	}
	return p.defaultLanguage
}

// canonicalCurrency rewrites deprecated currency codes.
func (p *Protocol) canonicalCurrency(code string) string {
	if alias, ok := p.currencyAliases[code]; ok {
		return alias
	}
	return code
}

func encodedFormFields(secret string, params Params) ([]formField, error) {
	payload, err := encodedAPIPayload(secret, params)
	if err != nil {
		return nil, err
	}
	return []formField{
		{Name: "data", Value: payload.Data},
		{Name: "signature", Value: payload.Signature},
	}, nil
}

func legacyFormFields(secret string, params Params) ([]formField, error) {
	values := make([]string, len(legacySignatureFields))
	for i, key := range legacySignatureFields {
		values[i] = params.String(key)
	}
	fields := make([]formField, 0, len(legacyFormParams)+1)
	for _, key := range legacyFormParams {
		if _, ok := params[key]; !ok {
			continue
		}
		fields = append(fields, formField{Name: key, Value: params.String(key)})
	}
	fields = append(fields, formField{Name: "signature", Value: signature.SignFields(secret, values...)})
	return fields, nil
}

func rawAPIPayload(secret string, params Params) (signedPayload, error) {
	raw, err := canonicalize(params)
	if err != nil {
		return signedPayload{}, err
	}
	return signedPayload{
		Data:      string(raw),
		Signature: signature.Sign(secret, raw),
	}, nil
}

func encodedAPIPayload(secret string, params Params) (signedPayload, error) {
	raw, err := canonicalize(params)
	if err != nil {
		return signedPayload{}, err
	}
	data := signature.Encode(raw)
	return signedPayload{
		Data:      data,
		Signature: signature.Sign(secret, []byte(data)),
	}, nil
}

func canonicalize(params Params) ([]byte, error) {
	raw, err := signature.Canonicalize(map[string]any(params))
	if err != nil {
		return nil, fmt.Errorf("liqpay: serialize params: %w", err)
	}
	return raw, nil
}
