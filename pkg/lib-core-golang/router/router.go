package router

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	uuid "github.com/satori/go.uuid"
	"gopkg.in/go-playground/validator.v9"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

type contextKey string

const (
	validatorRequestKey   contextKey = "validator"
	pathParamValueFuncKey contextKey = "path-param-value-func"
)

// RequestParamType represents type of a request parameter
type RequestParamType string

const (
	// PathParam is a request path parameter type
	PathParam RequestParamType = "path"

	// QueryParam is a request query parameter type
	QueryParam RequestParamType = "query"
)

type structValidator struct {
	validate *validator.Validate
}

func newStructValidator() *structValidator {
	return &structValidator{validate: validator.New()}
}

func (v *structValidator) validateStruct(ctx context.Context, target interface{}) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}
	logger.WithError(err).Info(ctx, "Failed to validate params")
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return BadRequestError("ValidationFailed: failed to validate params")
	}
	badFields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		badFields = append(badFields, fieldErr.Field())
	}
	return BadRequestError(fmt.Sprint("ValidationFailed: params ", badFields, " are invalid"))
}

type pathParamValueFunc func(req *http.Request, name string) string

// ParamsBinder binds request params to values. The first failure
// short circuits the rest of the chain and is returned from Validate
type ParamsBinder struct {
	req            *http.Request
	err            error
	validator      *structValidator
	pathParamValue pathParamValueFunc
}

func newParamsBinder(req *http.Request, pathParamValue pathParamValueFunc) *ParamsBinder {
	return &ParamsBinder{req: req, validator: newStructValidator(), pathParamValue: pathParamValue}
}

func (b *ParamsBinder) param(paramType RequestParamType, name string, rawValue string) *ParamBinder {
	return &ParamBinder{paramType: paramType, name: name, rawValue: rawValue, binder: b}
}

// PathParam binds param from request path
func (b *ParamsBinder) PathParam(name string) *ParamBinder {
	return b.param(PathParam, name, b.pathParamValue(b.req, name))
}

// QueryParam binds param from request query
func (b *ParamsBinder) QueryParam(name string) *ParamBinder {
	return b.param(QueryParam, name, b.req.URL.Query().Get(name))
}

// Validate returns a binding error if any, otherwise it validates
// exposed fields of the target structure.
// See https://godoc.org/gopkg.in/go-playground/validator.v9 for tags
func (b *ParamsBinder) Validate(target interface{}) error {
	if b.err != nil {
		return b.err
	}
	return b.validator.validateStruct(b.req.Context(), target)
}

// ParamBinder binds particular param
type ParamBinder struct {
	paramType RequestParamType
	name      string
	rawValue  string
	binder    *ParamsBinder
}

func (pb *ParamBinder) fail(err error) *ParamsBinder {
	logger.WithError(err).Info(pb.binder.req.Context(), "Failed to bind %v param %v", pb.paramType, pb.name)
	pb.binder.err = ParamValidationError(pb.paramType, pb.name)
	return pb.binder
}

// Default assign param default value
func (pb *ParamBinder) Default(value string) *ParamBinder {
	if pb.rawValue == "" {
		pb.rawValue = value
	}
	return pb
}

// Int bind param as int
func (pb *ParamBinder) Int(receiver *int) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	value, err := strconv.Atoi(pb.rawValue)
	if err != nil {
		return pb.fail(err)
	}
	*receiver = value
	return pb.binder
}

// String bind param as string
func (pb *ParamBinder) String(receiver *string) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	*receiver = pb.rawValue
	return pb.binder
}

// UUID bind param as uuid
func (pb *ParamBinder) UUID(receiver *uuid.UUID) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	value, err := uuid.FromString(pb.rawValue)
	if err != nil {
		return pb.fail(err)
	}
	*receiver = value
	return pb.binder
}

// CustomValue is a function that converts raw string to a target value
type CustomValue func(rawValue string) (interface{}, error)

// Custom binds param using given conversion function
func (pb *ParamBinder) Custom(receiver interface{}, valueFn CustomValue) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	value, err := valueFn(pb.rawValue)
	if err != nil {
		return pb.fail(err)
	}
	reflect.ValueOf(receiver).Elem().Set(reflect.ValueOf(value))
	return pb.binder
}

// ResponseDecorator is a helper function to decorate response
type ResponseDecorator func(w http.ResponseWriter) error

// HandlerToolkit is a collection of tools to process a request and build a response
type HandlerToolkit interface {
	BindParams() *ParamsBinder
	BindPayload(receiver interface{}) error

	// WriteJSON will serialize the payload and write it to the response
	// Optionally use decorators, for example WithStatus
	WriteJSON(payload interface{}, decorators ...ResponseDecorator) error

	// WithStatus is a decorator that sets the http status, used with WriteJSON
	WithStatus(status int) ResponseDecorator
}

// ToolkitHandlerFunc is a handler that gets a toolkit and may return an error.
// Errors are sent as HTTPError responses
type ToolkitHandlerFunc func(w http.ResponseWriter, req *http.Request, h HandlerToolkit) error

// ServeHTTP makes ToolkitHandlerFunc an http.Handler
func (f ToolkitHandlerFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	toolkit := handlerToolkit{
		request:        req,
		responseWriter: w,
		validator:      req.Context().Value(validatorRequestKey).(*structValidator),
		pathParamValue: req.Context().Value(pathParamValueFuncKey).(pathParamValueFunc),
	}
	if err := f(w, req, &toolkit); err != nil {
		httpErr := newHTTPErrorFromError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.WithError(err).Error(req.Context(), "Failed to process request")
		} else {
			logger.WithError(err).Info(req.Context(), "Request rejected with %v", httpErr.StatusCode)
		}
		httpErr.Send(w)
	}
}

// MiddlewareFunc is a function that can be injected into a request chain
type MiddlewareFunc func(next http.Handler) http.Handler

// Router is a layer to abstract underlying http router implementation
type Router interface {
	Handle(method string, pattern string, handler http.Handler)
	Use(mw MiddlewareFunc)

	/*
		pathParam returns the bound parameter with the given name.
		Suppose we have a route pattern:

			/v1/accounts/:id

		and the URL Path:

			/v1/accounts/100

		in this case pathParam will return 100
	*/
	pathParam(r *http.Request, name string) string

	ServeHTTP(http.ResponseWriter, *http.Request)
}

// CreateRouter returns default router implementation
func CreateRouter() Router {
	router := createGojiRouter()
	v := newStructValidator()
	router.Use(MiddlewareFunc(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCtx := context.WithValue(r.Context(), validatorRequestKey, v)
			nextCtx = context.WithValue(nextCtx, pathParamValueFuncKey, pathParamValueFunc(router.pathParam))
			next.ServeHTTP(w, r.WithContext(nextCtx))
		})
	}))
	return router
}

const shutdownTimeout = 10 * time.Second

// StartServer serves the router on given port until ctx is done,
// then shuts the server down letting active requests complete
func StartServer(ctx context.Context, port int, setup func(r Router)) error {
	router := CreateRouter()
	setup(router)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting server on port %v", port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info(nil, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != http.ErrServerClosed {
		return err
	}
	return nil
}
