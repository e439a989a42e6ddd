// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ranking orders gallery entries by up votes and freezes that order
// once per page lifetime, so counters can change later without cards moving.
package ranking
