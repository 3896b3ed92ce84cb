package email

import "strconv"

// SendWelcomeEmail sends a welcome email to a new user.
func (c *Client) SendWelcomeEmail(to, firstName string) error {
	data := map[string]string{
		"UserFirstName": firstName,
	}

	return c.SendEmail(
		to,
		"Welcome to Trailbook!",
		TemplateWelcome,
		data,
	)
}

// SendPasswordResetEmail sends the reset link for a pending password
// reset. The link embeds the plain token and stays valid for the
// stated number of minutes.
func (c *Client) SendPasswordResetEmail(to, firstName, resetURL string, validMinutes int) error {
	data := map[string]string{
		"UserFirstName": firstName,
		"ResetURL":      resetURL,
		"ValidMinutes":  strconv.Itoa(validMinutes),
	}

	return c.SendEmail(
		to,
		"Your password reset token (valid for 10 minutes)",
		TemplatePasswordReset,
		data,
	)
}
