package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies; booking and lead payloads are small.
const maxBodyBytes = 1 << 20

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// ValidationDetails turns validator errors into a field-to-message map for
// error responses. Custom tags get wording the booking widget can show
// directly.
func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = tagMessage(err)
	}
	return details
}

func tagMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "required"
	case "date":
		return "must be a YYYY-MM-DD date"
	case "clock":
		return "must be an HH:MM time"
	case "localdt":
		return "must be a YYYY-MM-DDTHH:MM datetime"
	case "phone":
		return "must be a valid phone number"
	case "minutes15":
		return "must be a positive multiple of 15 minutes"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + err.Tag() + " validation"
	}
}

func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64, error) {
	limit, err := parseQueryInt(values, "limit", defaultLimit, 1)
	if err != nil {
		return 0, 0, err
	}
	offset, err := parseQueryInt(values, "offset", 0, 0)
	if err != nil {
		return 0, 0, err
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, offset, nil
}

func parseQueryInt(values url.Values, key string, fallback, min int64) (int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < min {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}
