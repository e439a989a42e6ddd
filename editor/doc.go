// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package editor loads an asset's SVG markup for editing and turns edited
// markup into a preview that is safe to inline into the gallery page.
package editor
