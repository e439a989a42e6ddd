// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// AdminScope is the HMAC input for the operator key of a deployment.
const AdminScope = "gallery-admin"

var ErrInvalidAdminKey = errors.New("invalid admin key")

// GenerateAdminKey derives the admin key for scope from the deployment salt.
// Operators obtain it with `galleryctl admin-key`.
func GenerateAdminKey(scope, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(scope))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks the provided key in constant time
func ValidateAdminKey(scope, adminKey, salt string) error {
	if adminKey == "" || salt == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(scope, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for the vote audit log.
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars are enough to correlate events
	return hex.EncodeToString(sum[:8])
}
