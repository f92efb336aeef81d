package accounts

import (
	"bytes"
	"text/template"
	"time"
)

const loginEmailSubject = "Your login link for Superlists"

var loginEmailTemplate = template.Must(template.New("login").Parse(`Hi {{.Email}},

Use this link to log in to Superlists:

{{.LoginURL}}

The link is valid for {{printf "%.0f" .TTL.Hours}} hours.

If you did not request a login link, you can ignore this email.
`))

type loginEmailParams struct {
	Email    string
	LoginURL string
	TTL      time.Duration
}

func renderLoginEmail(params loginEmailParams) (string, error) {
	var buf bytes.Buffer
	if err := loginEmailTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}
