package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ballsdex/merchant-service/internal/logger"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator instance
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// decodeAndValidate decodes the request body into dst and validates struct
// tags, writing a 400 response on failure. Returns false when the request
// was rejected.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		logger.FromContext(r.Context()).Debug("Request validation failed", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return false
	}
	return true
}
