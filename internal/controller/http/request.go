package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
	"github.com/vadim/social-insights/internal/httpx/response"
)

var errInvalidJSON = errors.New("invalid JSON")

// FieldTypeError reports a body field whose JSON value has the wrong type
type FieldTypeError struct {
	Field string
	Want  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("%s must be %s", e.Field, e.Want)
}

// decodeJSON decodes the request body into v. A value of the wrong type is
// reported as *FieldTypeError naming its field, anything else as errInvalidJSON.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &FieldTypeError{Field: typeErr.Field, Want: describeType(typeErr.Type)}
	}
	return errInvalidJSON
}

// decodePostJSON decodes a body carrying post metrics. Type violations become
// *entity.InvalidMetricsError like range violations do.
func decodePostJSON(r *http.Request, v any) error {
	err := decodeJSON(r, v)

	var fieldErr *FieldTypeError
	if errors.As(err, &fieldErr) {
		return &entity.InvalidMetricsError{Field: fieldErr.Field, Reason: "must be " + fieldErr.Want}
	}
	return err
}

// writeDecodeError answers a failed decodeJSON or decodePostJSON with 400
func writeDecodeError(w http.ResponseWriter, err error) {
	response.BadRequest(w, err.Error())
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map, reflect.Pointer:
		return "an object"
	default:
		return "of type " + t.String()
	}
}
