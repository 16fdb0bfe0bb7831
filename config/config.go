package config

import (
	"context"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/config"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/version"
)

var appEnv = config.NewAppEnv(version.AppName)
var configBuilder = config.NewBuilder(appEnv)

var localParams = configBuilder.NewParamsBuilder("local", configBuilder.WithLocalSource())
var remoteParams = configBuilder.NewParamsBuilder("remote", configBuilder.WithRemoteSource())

// Do not change vars below at runtime
var (
	LogLevel = localParams.NewParam("log/level").String()

	ServerPort = localParams.NewParam("server/port").Int()

	StorageDriver = localParams.NewParam("storage/driver").String()
	StorageDSN    = remoteParams.NewParam("storage/data-source-name").String()

	APIBaseURL = localParams.NewParam("api/base-url").String()
)

// Log represents logger specific options
type Log struct {
	Level config.StringVal
}

// Server represents http server settings
type Server struct {
	Port config.IntVal
}

// Storage represents storage settings
type Storage struct {
	Driver config.StringVal
	DSN    config.StringVal
}

// API represents settings of clients of the service api
type API struct {
	BaseURL config.StringVal
}

// AppConfig is a toplevel config structure
type AppConfig struct {
	Env     config.AppEnv
	Log     Log
	Server  Server
	Storage Storage
	API     API
}

// LoadAppConfig will load and initialize app config structure
func LoadAppConfig(ctx context.Context) (*AppConfig, error) {
	cfg, err := configBuilder.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Env: appEnv,
		Log: Log{
			Level: cfg.StringParam(LogLevel),
		},
		Server: Server{
			Port: cfg.IntParam(ServerPort),
		},
		Storage: Storage{
			Driver: cfg.StringParam(StorageDriver),
			DSN:    cfg.StringParam(StorageDSN),
		},
		API: API{
			BaseURL: cfg.StringParam(APIBaseURL),
		},
	}, nil
}
