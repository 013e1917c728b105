package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"esg-assess/internal/esg"
	"esg-assess/internal/middleware"
	"esg-assess/internal/service"
	"esg-assess/pkg/validator"
)

// maxBodyBytes caps request bodies. The largest payload is a questionnaire.
const maxBodyBytes = 1 << 20

var timeType = reflect.TypeOf(time.Time{})

// normalizeSlices recursively replaces nil slices with empty ones. Values
// with their own JSON encoding, such as time.Time and decimal.Decimal, are
// copied as is.
func normalizeSlices(data any) any {
	if data == nil {
		return data
	}
	v := reflect.ValueOf(data)
	if _, ok := data.(json.Marshaler); ok && v.Kind() != reflect.Slice {
		return data
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Type() == timeType {
			return data
		}
		normalized := normalizeSlices(v.Elem().Interface())
		result := reflect.New(v.Elem().Type())
		result.Elem().Set(reflect.ValueOf(normalized))
		return result.Interface()

	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
		result := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			setNormalized(result.Index(i), v.Index(i))
		}
		return result.Interface()

	case reflect.Map:
		if v.IsNil() {
			return data
		}
		result := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.New(v.Type().Elem()).Elem()
			setNormalized(elem, iter.Value())
			result.SetMapIndex(iter.Key(), elem)
		}
		return result.Interface()

	case reflect.Struct:
		if v.Type() == timeType {
			return data
		}
		result := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			setNormalized(result.Field(i), v.Field(i))
		}
		return result.Interface()
	}

	return data
}

// setNormalized stores the normalized form of src in dst. Interface-typed
// destinations keep the concrete type of the normalized value.
func setNormalized(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Slice, reflect.Ptr, reflect.Struct, reflect.Map, reflect.Interface:
	default:
		dst.Set(src)
		return
	}
	if src.Kind() == reflect.Interface || src.Kind() == reflect.Ptr || src.Kind() == reflect.Map {
		if src.IsNil() {
			dst.Set(src)
			return
		}
	}
	normalized := reflect.ValueOf(normalizeSlices(src.Interface()))
	if normalized.Type().AssignableTo(dst.Type()) {
		dst.Set(normalized)
		return
	}
	dst.Set(src)
}

// respondWithJSON writes payload with nil slices encoded as [] so frontends
// can always iterate a list field
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(normalizeSlices(payload)); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// validationResponse is the body of every 400 caused by invalid input
type validationResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func respondWithValidation(w http.ResponseWriter, messages []string) {
	respondWithJSON(w, http.StatusBadRequest, validationResponse{
		Error:  "validation failed",
		Errors: messages,
	})
}

// respondWithServiceError maps service and domain errors to status codes.
// Anything unexpected is logged and reported as a 500 without details.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var vErr *esg.ValidationError
	var fieldErrs validator.Errors
	switch {
	case errors.As(err, &vErr):
		respondWithValidation(w, vErr.Messages)
	case errors.As(err, &fieldErrs):
		respondWithValidation(w, fieldErrs)
	case errors.Is(err, esg.ErrInvalidTimeframe):
		respondWithValidation(w, []string{err.Error()})
	case errors.Is(err, service.ErrNoProfile):
		respondWithError(w, http.StatusPreconditionFailed, "Business profile required")
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrRegistrationDisabled):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", middleware.GetRequestID(r))
		respondWithError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads a JSON body into dst and writes a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return false
	}
	return true
}

// pathID parses a numeric path value and writes a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user ID and writes a 401 if missing
func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
	}
	return id, ok
}
