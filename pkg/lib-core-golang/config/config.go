package config

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

const (
	appEnvVar = "APP_ENV"

	facetVar = "APP_ENV_FACET"

	clusterNameVar = "CLUSTER_NAME"

	awsSSMEndpointURLVar          = "AWS_SSM_ENDPOINT_URL"
	awsSSMEndpointTokenVar        = "AWS_SSM_ENDPOINT_TOKEN"
	awsSSMEndpointTokenHeaderName = "x-access-token"
)

var logger = diag.CreateLogger()

// AppEnv represents app env
type AppEnv struct {
	// ServiceName is a name of a current service
	ServiceName string

	// Name is a env name taken from APP_ENV. Defaults to dev or test when running tests
	Name string

	// Facet is a flavor of the env (e.g preprod for production) taken from APP_ENV_FACET
	Facet string

	// ClusterName is a name of a cluster where service is running
	ClusterName string
}

type appEnvCfg struct {
	testRun func() bool
	getenv  func(key string) string
}

// test flags are registered after package init since go 1.13
// so the binary name is checked as well
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test")
}

type appEnvOpt func(*appEnvCfg)

func withLookupFlag(lookupFlag func(name string) *flag.Flag) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.testRun = func() bool { return lookupFlag("test.v") != nil }
	}
}

func withGetenv(getenv func(key string) string) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.getenv = getenv
	}
}

// NewAppEnv creates a new instance of the app env from os env
func NewAppEnv(serviceName string, opts ...appEnvOpt) AppEnv {
	cfg := appEnvCfg{
		testRun: isTestRun,
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := cfg.getenv(appEnvVar)
	if name == "" {
		if !cfg.testRun() {
			name = "dev"
		} else {
			name = "test"
		}
	}
	return AppEnv{
		ServiceName: serviceName,
		Name:        name,
		Facet:       cfg.getenv(facetVar),
		ClusterName: cfg.getenv(clusterNameVar),
	}
}

// Source is an abstraction to read params
type Source interface {
	GetParameters(ctx context.Context, params []param) (map[paramID]interface{}, error)
}

// ServiceConfig gives access to loaded param values.
// Getters panic if the param was not registered before loading
type ServiceConfig interface {
	StringParam(p StringParam) StringVal
	IntParam(p IntParam) IntVal
	BoolParam(p BoolParam) BoolVal
}

type serviceConfig struct {
	values map[paramID]paramValue
}

func (c *serviceConfig) value(id paramID) paramValue {
	val, ok := c.values[id]
	if !ok {
		panic(fmt.Sprintf("Unknown parameter: %v", id))
	}
	return val
}

func (c *serviceConfig) StringParam(p StringParam) StringVal {
	return c.value(p.paramID).(StringVal)
}

func (c *serviceConfig) IntParam(p IntParam) IntVal {
	return c.value(p.paramID).(IntVal)
}

func (c *serviceConfig) BoolParam(p BoolParam) BoolVal {
	return c.value(p.paramID).(BoolVal)
}

type sourceBinding struct {
	name   string
	params []param
	source Source
}

type loadCfg struct {
	bindings []sourceBinding
}

// ServiceConfigOpt is an option of Load
type ServiceConfigOpt func(cfg *loadCfg)

func withSource(binding sourceBinding) ServiceConfigOpt {
	return func(cfg *loadCfg) {
		cfg.bindings = append(cfg.bindings, binding)
	}
}

// Load fetches values of all bound params. Every param must be
// resolved by its source, otherwise loading fails
func Load(ctx context.Context, opts ...ServiceConfigOpt) (ServiceConfig, error) {
	cfg := loadCfg{}
	for _, opt := range opts {
		opt(&cfg)
	}

	result := &serviceConfig{values: map[paramID]paramValue{}}
	for _, binding := range cfg.bindings {
		values, err := binding.source.GetParameters(ctx, binding.params)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to fetch from source %v", binding.name)
		}
		logger.
			WithData(diag.MsgData{"params": len(binding.params)}).
			Debug(ctx, "Fetched %v values from %v source", len(values), binding.name)
		for _, p := range binding.params {
			rawValue, ok := values[p.paramID]
			if !ok {
				return nil, errors.Errorf("Parameter %v not found (source=%v)", p.paramID, binding.name)
			}
			value := p.newValue()
			if err := value.setValue(rawValue); err != nil {
				return nil, errors.Wrapf(err, "Failed to set parameter %v value (source=%v)", p.paramID, binding.name)
			}
			result.values[p.paramID] = value
		}
	}
	return result, nil
}
