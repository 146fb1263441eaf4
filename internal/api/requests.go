// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package api

// listRequest bounds the limit parameter shared by the list-shaped
// endpoints.
type listRequest struct {
	Limit int `validate:"min=1,max=100"`
}
