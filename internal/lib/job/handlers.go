package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleWelcomeEmailTask processes the welcome email task.
func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w", err)
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Processing welcome email task")

	if err := j.email.SendWelcomeEmail(p.To, p.FirstName); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Successfully sent welcome email")

	return nil
}

// handlePasswordResetEmailTask processes the password reset email
// task. A failed send is retried by Asynq until the token window
// closes.
func (j *JobService) handlePasswordResetEmailTask(ctx context.Context, t *asynq.Task) error {
	var p PasswordResetEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal password reset email payload: %w", err)
	}

	j.logger.Info().
		Str("type", "password_reset").
		Str("to", p.To).
		Msg("Processing password reset email task")

	if err := j.email.SendPasswordResetEmail(p.To, p.FirstName, p.ResetURL, p.ValidMinutes); err != nil {
		j.logger.Error().
			Str("type", "password_reset").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send password reset email")
		return err
	}

	j.logger.Info().
		Str("type", "password_reset").
		Str("to", p.To).
		Msg("Successfully sent password reset email")

	return nil
}
