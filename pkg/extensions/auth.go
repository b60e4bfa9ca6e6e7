// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable collaborator interfaces the
// catalog core depends on but does not implement itself.
//
// The catalog's permission model is three-tier:
//
//   - administrador: full access, including delete and bulk delete
//   - usuario: create/read/update, import, events; no delete
//   - visualizador: read-only
//
// Role gating happens in the transport layer (middleware package); the
// core assumes its callers enforce it consistently.
package extensions

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthorized is returned when authentication or authorization fails.
// Implementations should wrap this error with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// Role names are kept verbatim from the catalog's permission model.
const (
	RoleAdministrador = "administrador"
	RoleUsuario       = "usuario"
	RoleVisualizador  = "visualizador"
)

// AuthInfo contains identity information returned after successful
// authentication.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated principal.
	// This is the only required field and must never be empty.
	UserID string

	// Email is the principal's email address. May be empty.
	Email string

	// Role is one of RoleAdministrador, RoleUsuario, RoleVisualizador.
	Role string
}

// HasAnyRole checks if the principal holds one of the given roles.
//
//	if !authInfo.HasAnyRole(extensions.RoleAdministrador) {
//	    return extensions.ErrUnauthorized
//	}
func (a *AuthInfo) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns the caller's
// identity. Implementations must be safe for concurrent use.
//
// The default NopAuthProvider always returns a valid "local-user" with
// administrador privileges, so the service functions without any
// authentication infrastructure during local development. Deployments
// validate real tokens via StaticTokenProvider or an external identity
// provider implementing this interface.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the principal's
	// identity. Returns ErrUnauthorized (possibly wrapped) if invalid.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default provider for tokenless local runs.
//
// It always returns a valid local user with administrador privileges.
// Thread-safe: this implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always returns a local administrador. The token is ignored;
// any value, including empty string, authenticates successfully.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Role:   RoleAdministrador,
	}, nil
}

// StaticTokenProvider authenticates bearer tokens against a fixed
// token-to-role table, typically parsed from the CATALOG_API_TOKENS
// environment variable.
//
// Thread-safe: the table is immutable after construction.
type StaticTokenProvider struct {
	tokens map[string]AuthInfo
}

// NewStaticTokenProvider builds a provider from an explicit table.
// Entries with an unknown role are normalized to visualizador so a
// typo in configuration can never grant write access.
func NewStaticTokenProvider(tokens map[string]AuthInfo) *StaticTokenProvider {
	cleaned := make(map[string]AuthInfo, len(tokens))
	for tok, info := range tokens {
		if tok == "" {
			continue
		}
		switch info.Role {
		case RoleAdministrador, RoleUsuario, RoleVisualizador:
		default:
			info.Role = RoleVisualizador
		}
		if info.UserID == "" {
			info.UserID = "token-user"
		}
		cleaned[tok] = info
	}
	return &StaticTokenProvider{tokens: cleaned}
}

// ParseTokenSpec parses the "token=role,token=role" form used by the
// CATALOG_API_TOKENS environment variable into a provider table.
// Malformed pairs are skipped.
func ParseTokenSpec(spec string) map[string]AuthInfo {
	out := make(map[string]AuthInfo)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tok, role, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		tok = strings.TrimSpace(tok)
		role = strings.ToLower(strings.TrimSpace(role))
		if tok == "" {
			continue
		}
		out[tok] = AuthInfo{UserID: "token-user", Role: role}
	}
	return out
}

// Validate looks the token up in the static table.
func (p *StaticTokenProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	info, ok := p.tokens[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	return &info, nil
}

// Compile-time interface compliance checks.
var (
	_ AuthProvider = (*NopAuthProvider)(nil)
	_ AuthProvider = (*StaticTokenProvider)(nil)
)
