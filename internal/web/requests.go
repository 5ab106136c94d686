// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/mbektemi/mbektemi/internal/validation"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20 // 1 MiB

// decodeAndValidate decodes the request body into dst and runs struct
// validation. On failure it writes the error envelope and returns false;
// form endpoints surface only the first failing rule.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "Request body must be valid JSON", nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondError(w, http.StatusUnprocessableEntity, CodeValidation, verr.First(), nil)
		return false
	}
	return true
}
