// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides Valkey (Redis-compatible) client initialization
// and the two-level cache for synthesized preview documents.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialTimeout bounds the connectivity check in ConnectValkey.
const dialTimeout = 5 * time.Second

// ValkeyOptions selects the server and logical database. Sessions, OTP
// challenges and cached previews share one database and are separated by
// key prefix.
type ValkeyOptions struct {
	Addr     string
	Password string
	DB       int
	// PoolSize of 0 keeps the go-redis default.
	PoolSize int
}

// ConnectValkey opens a client and pings it before returning. The caller
// owns the client and must Close it.
func ConnectValkey(ctx context.Context, opts ValkeyOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr, err)
	}

	slog.Info("valkey connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
