package config

import "context"

// SourceFactory is a func that creates an instance of a source
type SourceFactory func() (Source, error)

// Builder is a tool to setup config
type Builder struct {
	appEnv         AppEnv
	paramsBuilders []*ParamsBuilder
}

// NewBuilder returns an instance of a config builder
func NewBuilder(appEnv AppEnv) *Builder {
	return &Builder{appEnv: appEnv}
}

// WithLocalSource creates a source factory for a local source
// that reads the config dir of the project
func (b *Builder) WithLocalSource() SourceFactory {
	return func() (Source, error) {
		return NewLocalSource(
			LocalOpts.WithAppEnv(b.appEnv),
			LocalOpts.WithIgnoreDefaultService(),
		)
	}
}

// WithRemoteSource creates a source factory for AWS SSM.
// For dev and test envs params are taken from the local source instead
func (b *Builder) WithRemoteSource() SourceFactory {
	return func() (Source, error) {
		if b.appEnv.Name == "dev" || b.appEnv.Name == "test" {
			return NewLocalSource(
				LocalOpts.WithAppEnv(b.appEnv),
				LocalOpts.WithIgnoreDefaultService(),
			)
		}
		logger.Info(nil, "Using AWS SSM as a remote params source")
		return NewAWSSSMSource(AwsSSMOpts.WithAppEnv(b.appEnv))()
	}
}

// NewParamsBuilder is a builder to build params bound to a given source
func (b *Builder) NewParamsBuilder(name string, sourceFactory SourceFactory) *ParamsBuilder {
	pb := &ParamsBuilder{
		name:          name,
		params:        []param{},
		serviceName:   b.appEnv.ServiceName,
		sourceFactory: sourceFactory,
	}
	b.paramsBuilders = append(b.paramsBuilders, pb)
	return pb
}

// LoadConfig creates sources and loads all params built so far
func (b *Builder) LoadConfig(ctx context.Context) (ServiceConfig, error) {
	opts := make([]ServiceConfigOpt, 0, len(b.paramsBuilders))
	for _, paramsBuilder := range b.paramsBuilders {
		source, err := paramsBuilder.sourceFactory()
		if err != nil {
			return nil, err
		}
		opts = append(opts, withSource(sourceBinding{
			name:   paramsBuilder.name,
			params: paramsBuilder.params,
			source: source,
		}))
	}

	cfg, err := Load(ctx, opts...)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load config")
		return nil, err
	}
	return cfg, nil
}

// ParamsBuilder is a tool to build params bound to particular source
type ParamsBuilder struct {
	name          string
	params        []param
	serviceName   string
	sourceFactory SourceFactory
}

// NewParam returns an instance of a param builder
func (b *ParamsBuilder) NewParam(key string) *ParamBuilder {
	return &ParamBuilder{
		paramKey: key,
		paramSvc: b.serviceName,
		pb:       b,
	}
}

// ParamBuilder is a tool to build params
type ParamBuilder struct {
	paramKey string
	paramSvc string
	pb       *ParamsBuilder
}

// WithService binds param to a given service.
// By default params belong to the service of the app env
func (b *ParamBuilder) WithService(service string) *ParamBuilder {
	b.paramSvc = service
	return b
}

// Int creates an instance of an int param
func (b *ParamBuilder) Int() IntParam {
	p := newIntParam(b.paramKey, b.paramSvc)
	b.pb.params = append(b.pb.params, p.param)
	return p
}

// String creates an instance of a string param
func (b *ParamBuilder) String() StringParam {
	p := newStringParam(b.paramKey, b.paramSvc)
	b.pb.params = append(b.pb.params, p.param)
	return p
}

// Bool creates an instance of a bool param
func (b *ParamBuilder) Bool() BoolParam {
	p := newBoolParam(b.paramKey, b.paramSvc)
	b.pb.params = append(b.pb.params, p.param)
	return p
}
