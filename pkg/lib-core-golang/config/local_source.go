package config

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type localSource struct {
	dir                  string
	configFiles          []string
	envOverrides         map[string]interface{}
	defaultService       string
	ignoreDefaultService bool
	getenv               func(key string) string
}

// pick walks nested objects by a slash separated path
func pick(obj interface{}, path string) interface{} {
	val := obj
	for _, part := range strings.Split(path, "/") {
		nested, ok := val.(map[string]interface{})
		if !ok {
			return nil
		}
		if val, ok = nested[part]; !ok {
			return nil
		}
	}
	return val
}

func (s *localSource) paramPath(id paramID) string {
	if id.service == "" || (s.ignoreDefaultService && id.service == s.defaultService) {
		return id.key
	}
	return id.service + "/" + id.key
}

func readJSONFile(path string, receiver interface{}) error {
	buffer, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(buffer, receiver), "Failed to parse %v", path)
}

func (s *localSource) GetParameters(ctx context.Context, params []param) (map[paramID]interface{}, error) {
	values := map[paramID]interface{}{}

	// later files override values of earlier ones
	for _, configFile := range s.configFiles {
		var configData map[string]interface{}
		if err := readJSONFile(filepath.Join(s.dir, configFile), &configData); err != nil {
			if os.IsNotExist(errors.Cause(err)) && configFile != "default.json" {
				continue
			}
			return nil, err
		}
		for _, p := range params {
			if val := pick(configData, s.paramPath(p.paramID)); val != nil {
				values[p.paramID] = val
			}
		}
	}

	for _, p := range params {
		envName, ok := pick(s.envOverrides, s.paramPath(p.paramID)).(string)
		if !ok {
			continue
		}
		if envVal := s.getenv(envName); envVal != "" {
			logger.Debug(ctx, "Param %v taken from env %v", p.paramID, envName)
			values[p.paramID] = envVal
		}
	}

	return values, nil
}

// LocalOpt is an option of a local config source
type LocalOpt func(s *localSource)

// LocalOpts are options of a local source
var LocalOpts = struct {
	// WithDir option to set local dir to load config from
	WithDir func(dir string) LocalOpt

	// WithIgnoreDefaultService option to skip default service when building param path
	// so params for the default service will be resolved from a root of a config
	WithIgnoreDefaultService func() LocalOpt

	// WithAppEnv option adds env (and facet) specific files
	WithAppEnv func(appEnv AppEnv) LocalOpt

	withGetenv func(getenv func(key string) string) LocalOpt
}{
	WithDir: func(dir string) LocalOpt {
		return func(s *localSource) {
			s.dir = dir
		}
	},
	WithIgnoreDefaultService: func() LocalOpt {
		return func(s *localSource) {
			s.ignoreDefaultService = true
		}
	},
	WithAppEnv: func(appEnv AppEnv) LocalOpt {
		return func(s *localSource) {
			s.defaultService = appEnv.ServiceName
			s.configFiles = append(s.configFiles, appEnv.Name+".json")
			if appEnv.Facet != "" {
				s.configFiles = append(s.configFiles, appEnv.Name+"-"+appEnv.Facet+".json")
			}
		}
	},
	withGetenv: func(getenv func(key string) string) LocalOpt {
		return func(s *localSource) {
			s.getenv = getenv
		}
	},
}

func defaultConfigDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("Can not resolve config dir")
	}
	return filepath.Join(file, "..", "..", "..", "..", "config")
}

// NewLocalSource creates a source that reads params from json files
// in the config dir, similar to node-config:
//   default.json, <env>.json, <env>-<facet>.json
// and custom-environment-variables.json that maps params to env vars
func NewLocalSource(opts ...LocalOpt) (Source, error) {
	source := &localSource{
		dir:         defaultConfigDir(),
		configFiles: []string{"default.json"},
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(source)
	}

	overridesPath := filepath.Join(source.dir, "custom-environment-variables.json")
	if err := readJSONFile(overridesPath, &source.envOverrides); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}
	return source, nil
}
