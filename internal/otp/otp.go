// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package otp issues and verifies the six-digit email codes that complete
// signup and login. A pending challenge lives in Valkey under a random
// token that the client sends back with the code; nothing about it is
// stored in PostgreSQL.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces pending challenges in Valkey.
	keyPrefix = "otp:"

	// DefaultExpiry is how long a code stays valid.
	DefaultExpiry = 10 * time.Minute

	// MaxAttempts is the number of wrong codes a challenge survives.
	MaxAttempts = 5

	issuer = "sitecraft"
)

var (
	// ErrInvalidCode is returned for a wrong code or an unknown token.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrExpired is returned when the challenge has lapsed.
	ErrExpired = errors.New("verification code expired")
)

// Purpose says which flow a challenge completes.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeLogin  Purpose = "login"
)

var codeOpts = hotp.ValidateOpts{Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}

// Challenge is the client-visible part of a pending verification.
type Challenge struct {
	Token     string    `json:"otpSession"`
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Purpose   Purpose   `json:"purpose"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// pending is what Valkey holds for a challenge.
type pending struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Purpose   Purpose   `json:"purpose"`
	Secret    string    `json:"secret"`
	Counter   uint64    `json:"counter"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service issues and checks challenges.
type Service struct {
	client *redis.Client
	mailer Mailer
	expiry time.Duration
	now    func() time.Time
}

// New creates a Service. expiry == 0 selects DefaultExpiry; a nil mailer
// logs codes instead of sending them.
func New(client *redis.Client, mailer Mailer, expiry time.Duration) *Service {
	if expiry == 0 {
		expiry = DefaultExpiry
	}
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Service{client: client, mailer: mailer, expiry: expiry, now: time.Now}
}

// Start creates a challenge for the user and delivers its code.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, email string, purpose Purpose) (*Challenge, error) {
	key, err := hotp.Generate(hotp.GenerateOpts{Issuer: issuer, AccountName: email, SecretSize: 20})
	if err != nil {
		return nil, fmt.Errorf("otp secret: %w", err)
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("otp counter: %w", err)
	}
	p := pending{
		UserID:    userID,
		Email:     email,
		Purpose:   purpose,
		Secret:    key.Secret(),
		Counter:   binary.BigEndian.Uint64(buf[:]),
		ExpiresAt: s.now().Add(s.expiry),
	}
	code, err := hotp.GenerateCodeCustom(p.Secret, p.Counter, codeOpts)
	if err != nil {
		return nil, fmt.Errorf("otp code: %w", err)
	}

	token := uuid.NewString()
	if err := s.save(ctx, token, &p, s.expiry); err != nil {
		return nil, err
	}
	if err := s.mailer.SendCode(ctx, email, code, purpose, s.expiry); err != nil {
		s.client.Del(ctx, keyPrefix+token)
		return nil, fmt.Errorf("otp deliver: %w", err)
	}

	slog.Info("otp challenge started", "user_id", userID, "purpose", purpose)
	return &Challenge{Token: token, UserID: userID, Email: email, Purpose: purpose, ExpiresAt: p.ExpiresAt}, nil
}

// Verify checks code against the challenge named by token. A successful
// check consumes the challenge. After MaxAttempts wrong codes the
// challenge is dropped.
func (s *Service) Verify(ctx context.Context, token, code string) (*Challenge, error) {
	if token == "" || code == "" {
		return nil, ErrInvalidCode
	}
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("otp get: %w", err)
	}
	var p pending
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("otp unmarshal: %w", err)
	}
	if !s.now().Before(p.ExpiresAt) {
		s.client.Del(ctx, keyPrefix+token)
		return nil, ErrExpired
	}

	ok, err := hotp.ValidateCustom(code, p.Counter, p.Secret, codeOpts)
	if err != nil || !ok {
		p.Attempts++
		if p.Attempts >= MaxAttempts {
			s.client.Del(ctx, keyPrefix+token)
		} else if err := s.save(ctx, token, &p, redis.KeepTTL); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCode
	}

	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return nil, fmt.Errorf("otp consume: %w", err)
	}
	return &Challenge{Token: token, UserID: p.UserID, Email: p.Email, Purpose: p.Purpose, ExpiresAt: p.ExpiresAt}, nil
}

func (s *Service) save(ctx context.Context, token string, p *pending, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("otp marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("otp store: %w", err)
	}
	return nil
}
