package mail

import "fmt"

// Template wraps body text in the standard storefront email chrome.
func Template(text string) string {
	return fmt.Sprintf(`
    <div class="email" style="
        border: 1px solid black;
        padding: 20px;
        font-family: sans-serif;
        line-height: 2;
        font-size: 20px;
    ">
        <p>Hello there,</p>
        <p>%s</p>
        <p>Have a great day!</p>
    </div>
`, text)
}

// ResetBody builds the password-reset email body with the tokenized link.
func ResetBody(frontendURL, token string) string {
	return Template(fmt.Sprintf(
		`Your password reset token is here! <a href="%s/reset?resetToken=%s">Click here to reset your password.</a>`,
		frontendURL, token,
	))
}
