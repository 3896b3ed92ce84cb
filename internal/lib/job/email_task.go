package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names stored in Redis; Asynq routes on these strings.
const (
	TaskWelcome       = "email:welcome"
	TaskPasswordReset = "email:password_reset"
)

// WelcomeEmailPayload is the JSON payload for the welcome email task.
type WelcomeEmailPayload struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
}

// NewWelcomeEmailTask constructs the welcome email task. Delivery is
// nice-to-have, so it rides the default queue.
func NewWelcomeEmailTask(to, firstName string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:        to,
		FirstName: firstName,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// PasswordResetEmailPayload is the JSON payload for the reset email
// task. ResetURL embeds the plain token; the payload lives in Redis
// only until delivery.
type PasswordResetEmailPayload struct {
	To           string `json:"to"`
	FirstName    string `json:"first_name"`
	ResetURL     string `json:"reset_url"`
	ValidMinutes int    `json:"valid_minutes"`
}

// NewPasswordResetEmailTask constructs the reset email task. The token
// expires in minutes, so it goes to the critical queue with a tight
// retention window.
func NewPasswordResetEmailTask(to, firstName, resetURL string, validMinutes int) (*asynq.Task, error) {
	payload, err := json.Marshal(PasswordResetEmailPayload{
		To:           to,
		FirstName:    firstName,
		ResetURL:     resetURL,
		ValidMinutes: validMinutes,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskPasswordReset,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue("critical"),
		asynq.Timeout(30*time.Second),
		asynq.Retention(time.Duration(validMinutes)*time.Minute),
	), nil
}
