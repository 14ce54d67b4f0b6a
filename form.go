package liqpay

import (
	"fmt"
	"html"
	"strings"
	"text/template"
)

// formField is one hidden input of a checkout form.
type formField struct {
	Name  string
	Value string
}

const checkoutFormTemplate = `<form method="POST" action="{{attr .Action}}" accept-charset="utf-8">
{{- range .Fields}}
    <input type="hidden" name="{{attr .Name}}" value="{{attr .Value}}" />
{{- end}}
    <script type="text/javascript" src="https://static.liqpay.ua/libjs/sdk_button.js"></script>
    <sdk-button label="{{attr .Label}}" background="#77CC5D" onClick="submit()"></sdk-button>
</form>`

const legacyFormTemplate = `<form method="post" action="{{attr .Action}}" accept-charset="utf-8">
{{- range .Fields}}
	<input type="hidden" name="{{attr .Name}}" value="{{attr .Value}}"/>
{{- end}}
    <input type="image" src="//static.liqpay.ua/buttons/p1{{attr .Language}}.radius.png" name="btn_text" />
</form>`

// formView is the data passed to a form template.
type formView struct {
	Action   string
	Language string
	Label    string
	Fields   []formField
}

var formFuncs = template.FuncMap{"attr": html.EscapeString}

var formTemplates = map[string]*template.Template{
	checkoutFormTemplate: template.Must(template.New("checkout").Funcs(formFuncs).Parse(checkoutFormTemplate)),
	legacyFormTemplate:   template.Must(template.New("legacy").Funcs(formFuncs).Parse(legacyFormTemplate)),
}

// renderForm renders the protocol's checkout form. Values are
// attribute-escaped; base64 payloads pass through unchanged.
func renderForm(p *Protocol, action, language string, fields []formField) (string, error) {
	tmpl, ok := formTemplates[p.template]
	if !ok {
		return "", fmt.Errorf("liqpay: no form template for %s", p)
	}
	var b strings.Builder
	err := tmpl.Execute(&b, formView{
		Action:   action,
		Language: language,
		Label:    p.Label(language),
		Fields:   fields,
	})
	if err != nil {
		return "", fmt.Errorf("liqpay: render form: %w", err)
	}
	return b.String(), nil
}
