// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package otp

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers verification codes.
type Mailer interface {
	SendCode(ctx context.Context, email, code string, purpose Purpose, expiry time.Duration) error
}

// LogMailer writes codes to the log. It serves development setups without
// an email provider.
type LogMailer struct{}

func (LogMailer) SendCode(_ context.Context, email, code string, purpose Purpose, expiry time.Duration) error {
	slog.Info("verification code", "email", email, "code", code, "purpose", purpose, "expires_in", expiry)
	return nil
}
