package router

import (
	"encoding/json"
	"net/http"
	"reflect"
)

type handlerToolkit struct {
	request        *http.Request
	responseWriter http.ResponseWriter
	validator      *structValidator
	pathParamValue pathParamValueFunc
}

func (h *handlerToolkit) BindParams() *ParamsBinder {
	return &ParamsBinder{
		req:            h.request,
		validator:      h.validator,
		pathParamValue: h.pathParamValue,
	}
}

// BindPayload decodes JSON body into the receiver and validates it.
// Malformed JSON is reported as a bad request
func (h *handlerToolkit) BindPayload(receiver interface{}) error {
	if err := json.NewDecoder(h.request.Body).Decode(receiver); err != nil {
		logger.WithError(err).Info(h.request.Context(), "Failed to decode payload")
		return BadRequestError("ValidationFailed: malformed JSON payload")
	}

	// validator only works with structs
	target := reflect.Indirect(reflect.ValueOf(receiver))
	if target.Kind() != reflect.Struct {
		return nil
	}
	return h.validator.validateStruct(h.request.Context(), receiver)
}

func (h *handlerToolkit) WriteJSON(payload interface{}, decorators ...ResponseDecorator) error {
	// Headers have to be set before WithStatus sends them
	h.responseWriter.Header().Set("content-type", "application/json")

	for _, decorator := range decorators {
		if err := decorator(h.responseWriter); err != nil {
			return err
		}
	}
	return json.NewEncoder(h.responseWriter).Encode(payload)
}

// WithStatus decorate response with particular http status
func (h *handlerToolkit) WithStatus(status int) ResponseDecorator {
	return func(w http.ResponseWriter) error {
		w.WriteHeader(status)
		return nil
	}
}
