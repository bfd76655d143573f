package handler

import "html/template"

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "chooser"}}<!DOCTYPE html>
<html>
  <head><title>Sign in</title></head>
  <body>
    <h1>Sign in to {{.App}}</h1>
    {{if .Error}}<p class="error">{{.ErrorMessage}}</p>{{end}}
    {{range .Federated}}
    <p><a href="/login/{{$.App}}/{{.}}">Continue with {{.}}</a></p>
    {{end}}
    {{if .Local}}
    <h3>Email and password</h3>
    <form action="/login/{{.App}}/local" method="post">
      <div>
        <label for="email">Email:</label><br/>
        <input type="text" name="email" id="email" required>
      </div>
      <div>
        <label for="pass">Password: (8 characters minimum)</label><br/>
        <input type="password" name="password" id="pass" minlength="8" required>
      </div>
      <input type="submit" value="Login">
    </form>
    {{end}}
  </body>
</html>
{{end}}

{{define "error"}}<!DOCTYPE html>
<html>
  <head><title>{{.Title}}</title></head>
  <body>
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
    {{if .Detail}}<pre>{{.Detail}}</pre>{{end}}
  </body>
</html>
{{end}}
`))

// errorMessages maps error indicator codes (carried as ?error= on the
// chooser URL) to user-facing text. Unknown codes fall back to a
// generic line so nothing attacker-supplied is reflected.
var errorMessages = map[string]string{
	"invalid_credentials": "The email or password was not recognized.",
	"provider_rejected":   "The identity provider rejected the sign-in attempt.",
	"invalid_state":       "The sign-in attempt could not be verified. Please try again.",
	"login_expired":       "The sign-in attempt expired. Please try again.",
}

func errorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Sign-in failed. Please try again."
}
