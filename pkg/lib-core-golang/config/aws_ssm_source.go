package config

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/version"
)

// ssm GetParameters accepts up to 10 names per call
const ssmMaxNamesPerCall = 10

type ssmClient interface {
	GetParametersWithContext(ctx aws.Context, input *ssm.GetParametersInput, opts ...request.Option) (*ssm.GetParametersOutput, error)
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (rt roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func newSSMClientAuthTokenMiddleware(authToken string, next http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req.Header.Add(awsSSMEndpointTokenHeaderName, authToken)
		req.Header.Add("x-requested-by", version.AppName+"("+version.Version+")")
		return next.RoundTrip(req)
	})
}

func newSSMClient() (ssmClient, error) {
	s, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	clientCfg := aws.NewConfig()
	if endpointURL := os.Getenv(awsSSMEndpointURLVar); endpointURL != "" {
		logger.Info(nil, "Using SSM endpoint: %v", endpointURL)
		clientCfg = clientCfg.
			WithEndpoint(endpointURL).
			WithHTTPClient(&http.Client{
				Transport: newSSMClientAuthTokenMiddleware(os.Getenv(awsSSMEndpointTokenVar), http.DefaultTransport),
			})
	}
	return ssm.New(s, clientCfg), nil
}

type awsSSMSource struct {
	appEnv    AppEnv
	ssmClient ssmClient
}

// GetParameters resolves every param by /<env>/<service>/<key> name.
// If the app env has a cluster, /<env>/<cluster>/<service>/<key> wins
func (s *awsSSMSource) GetParameters(ctx context.Context, params []param) (map[paramID]interface{}, error) {
	envName := s.appEnv.Name
	clusterName := s.appEnv.ClusterName

	names := make([]*string, 0, len(params)*2)
	serviceScoped := make(map[string]paramID, len(params))
	clusterScoped := make(map[string]paramID, len(params))
	for _, p := range params {
		name := "/" + envName + "/" + p.service + "/" + p.key
		names = append(names, aws.String(name))
		serviceScoped[name] = p.paramID
		if clusterName != "" {
			name := "/" + envName + "/" + clusterName + "/" + p.service + "/" + p.key
			names = append(names, aws.String(name))
			clusterScoped[name] = p.paramID
		}
	}

	logger.WithData(diag.MsgData{"paths": aws.StringValueSlice(names)}).Debug(ctx, "Attempting to get SSM parameters")

	result := make(map[paramID]interface{}, len(params))
	fromCluster := map[paramID]bool{}
	for start := 0; start < len(names); start += ssmMaxNamesPerCall {
		end := start + ssmMaxNamesPerCall
		if end > len(names) {
			end = len(names)
		}
		output, err := s.ssmClient.GetParametersWithContext(ctx, &ssm.GetParametersInput{
			Names:          names[start:end],
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		for _, awsParam := range output.Parameters {
			name := aws.StringValue(awsParam.Name)
			if id, ok := clusterScoped[name]; ok {
				result[id] = aws.StringValue(awsParam.Value)
				fromCluster[id] = true
				continue
			}
			if id, ok := serviceScoped[name]; ok && !fromCluster[id] {
				result[id] = aws.StringValue(awsParam.Value)
			}
		}
	}
	return result, nil
}

// AwsSSMOpt is an option of an AWS SSM source
type AwsSSMOpt func(s *awsSSMSource)

// AwsSSMOpts are options of an AWS SSM source
var AwsSSMOpts = struct {
	// WithAppEnv option will set the app env
	WithAppEnv func(appEnv AppEnv) AwsSSMOpt

	withSSMClient func(client ssmClient) AwsSSMOpt
}{
	WithAppEnv: func(appEnv AppEnv) AwsSSMOpt {
		return func(s *awsSSMSource) {
			s.appEnv = appEnv
		}
	},
	withSSMClient: func(client ssmClient) AwsSSMOpt {
		return func(s *awsSSMSource) {
			s.ssmClient = client
		}
	},
}

// NewAWSSSMSource creates a factory of a source that reads params from AWS SSM
func NewAWSSSMSource(opts ...AwsSSMOpt) SourceFactory {
	return func() (Source, error) {
		source := &awsSSMSource{}
		for _, opt := range opts {
			opt(source)
		}
		if source.ssmClient == nil {
			client, err := newSSMClient()
			if err != nil {
				return nil, err
			}
			source.ssmClient = client
		}
		return source, nil
	}
}
