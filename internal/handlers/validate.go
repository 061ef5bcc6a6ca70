// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"sitecraft/internal/models"
)

// Validation limits for request fields.
const (
	maxNameLen        = 100
	maxEmailLen       = 254
	minPasswordLen    = 6
	maxPasswordLen    = 72 // bcrypt ignores anything longer
	maxPromptLen      = 20_000
	maxWebsiteNameLen = 200
)

// validateSignup checks signup input and returns the first error found.
func validateSignup(name, email, password string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 6 characters."
	}
	if len(password) > maxPasswordLen {
		return "Password is too long (max 72 bytes)."
	}
	return ""
}

func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLen {
		return "Email is too long."
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Email is invalid."
	}
	return ""
}

// validateGenerate checks a generation request.
func validateGenerate(prompt, websiteName string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Prompt is required."
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		return "Prompt is too long (max 20,000 characters)."
	}
	if utf8.RuneCountInString(websiteName) > maxWebsiteNameLen {
		return "Website name is too long (max 200 characters)."
	}
	return ""
}

// validateProfile checks a profile update.
func validateProfile(name, theme string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if !models.ValidTheme(theme) {
		return "Theme must be light or dark."
	}
	return ""
}
