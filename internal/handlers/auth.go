// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitecraft/internal/models"
	"sitecraft/internal/otp"
	"sitecraft/internal/session"
	"sitecraft/internal/store"
)

// Auth groups the signup, login and email code handlers. A session is
// only created once the emailed code has been verified.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
	codes    *otp.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore, codes *otp.Service) *Auth {
	return &Auth{sessions: sessions, users: users, codes: codes}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	OTPSession string `json:"otpSession"`
	Code       string `json:"code"`
}

// challengeResponse tells the client a code was sent.
type challengeResponse struct {
	OTPRequired bool      `json:"otpRequired"`
	Email       string    `json:"email"`
	UserID      uuid.UUID `json:"userId"`
	OTPSession  string    `json:"otpSession"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Message     string    `json:"message"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified account and emails a verification code.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = normalizeEmail(req.Email)
	if msg := validateSignup(req.Name, req.Email, req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := a.users.Create(r.Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		serverError(w, "signup create user", err)
		return
	}
	slog.Info("user signed up", "user_id", user.ID)

	a.startChallenge(w, r, user, otp.PurposeSignup, http.StatusCreated)
}

// Login checks the password and emails a login code.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = normalizeEmail(req.Email)

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		serverError(w, "login lookup", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	a.startChallenge(w, r, user, otp.PurposeLogin, http.StatusOK)
}

func (a *Auth) startChallenge(w http.ResponseWriter, r *http.Request, user *models.User, purpose otp.Purpose, status int) {
	ch, err := a.codes.Start(r.Context(), user.ID, user.Email, purpose)
	if err != nil {
		serverError(w, "start otp challenge", err)
		return
	}
	writeJSON(w, status, challengeResponse{
		OTPRequired: true,
		Email:       user.Email,
		UserID:      user.ID,
		OTPSession:  ch.Token,
		ExpiresAt:   ch.ExpiresAt,
		Message:     "A verification code has been sent to your email.",
	})
}

// VerifyOTP checks the emailed code, marks the account verified and
// starts the session.
func (a *Auth) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ch, err := a.codes.Verify(r.Context(), req.OTPSession, strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, otp.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, "Invalid verification code")
		return
	case errors.Is(err, otp.ErrExpired):
		writeError(w, http.StatusBadRequest, "Verification code expired, please request a new one")
		return
	case err != nil:
		serverError(w, "verify otp", err)
		return
	}

	if err := a.users.MarkOTPVerified(r.Context(), ch.UserID); err != nil {
		serverError(w, "mark otp verified", err)
		return
	}
	user, err := a.users.FindByID(r.Context(), ch.UserID)
	if err != nil {
		serverError(w, "verify otp lookup", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, sessionData(user)); err != nil {
		serverError(w, "session create", err)
		return
	}
	slog.Info("user verified", "user_id", user.ID, "purpose", ch.Purpose)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy", "error", err)
	}
	writeJSON(w, http.StatusOK, message{Message: "Logged out"})
}

func sessionData(u *models.User) *session.Data {
	return &session.Data{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
		Plan:   string(u.SubscriptionPlan),
	}
}
