package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
)

type fakeSSMClient struct {
	values    map[string]string
	err       error
	gotInputs []*ssm.GetParametersInput
}

func (c *fakeSSMClient) GetParametersWithContext(
	ctx aws.Context,
	input *ssm.GetParametersInput,
	opts ...request.Option,
) (*ssm.GetParametersOutput, error) {
	c.gotInputs = append(c.gotInputs, input)
	if c.err != nil {
		return nil, c.err
	}
	output := &ssm.GetParametersOutput{}
	for _, name := range input.Names {
		if value, ok := c.values[*name]; ok {
			output.Parameters = append(output.Parameters, &ssm.Parameter{Name: name, Value: aws.String(value)})
		} else {
			output.InvalidParameters = append(output.InvalidParameters, name)
		}
	}
	return output, nil
}

func Test_awsSSMSource_GetParameters(t *testing.T) {
	newParam := func() param {
		return param{paramID: paramID{key: "key-" + faker.Word(), service: "svc-" + faker.Word()}}
	}
	name := func(parts ...string) string {
		result := ""
		for _, part := range parts {
			result += "/" + part
		}
		return result
	}

	t.Run("service scoped params", func(t *testing.T) {
		appEnv := AppEnv{Name: "env-" + faker.Word()}
		p1, p2, missing := newParam(), newParam(), newParam()
		client := &fakeSSMClient{values: map[string]string{
			name(appEnv.Name, p1.service, p1.key): faker.Word(),
			name(appEnv.Name, p2.service, p2.key): faker.Word(),
		}}
		src, _ := NewAWSSSMSource(AwsSSMOpts.WithAppEnv(appEnv), AwsSSMOpts.withSSMClient(client))()

		got, err := src.GetParameters(context.Background(), []param{p1, p2, missing})
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, map[paramID]interface{}{
			p1.paramID: client.values[name(appEnv.Name, p1.service, p1.key)],
			p2.paramID: client.values[name(appEnv.Name, p2.service, p2.key)],
		}, got)
		if assert.Len(t, client.gotInputs, 1) {
			assert.Equal(t, []string{
				name(appEnv.Name, p1.service, p1.key),
				name(appEnv.Name, p2.service, p2.key),
				name(appEnv.Name, missing.service, missing.key),
			}, aws.StringValueSlice(client.gotInputs[0].Names))
			assert.True(t, aws.BoolValue(client.gotInputs[0].WithDecryption))
		}
	})

	t.Run("cluster scoped params win", func(t *testing.T) {
		appEnv := AppEnv{Name: "env-" + faker.Word(), ClusterName: "cluster-" + faker.Word()}
		p1, p2 := newParam(), newParam()
		clusterValue := "cluster-" + faker.Word()
		client := &fakeSSMClient{values: map[string]string{
			name(appEnv.Name, p1.service, p1.key):                     faker.Word(),
			name(appEnv.Name, appEnv.ClusterName, p1.service, p1.key): clusterValue,
			name(appEnv.Name, p2.service, p2.key):                     faker.Word(),
		}}
		src, _ := NewAWSSSMSource(AwsSSMOpts.WithAppEnv(appEnv), AwsSSMOpts.withSSMClient(client))()

		got, err := src.GetParameters(context.Background(), []param{p1, p2})
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, map[paramID]interface{}{
			p1.paramID: clusterValue,
			p2.paramID: client.values[name(appEnv.Name, p2.service, p2.key)],
		}, got)
	})

	t.Run("fetch in batches", func(t *testing.T) {
		appEnv := AppEnv{Name: "env-" + faker.Word()}
		params := make([]param, 0, 25)
		client := &fakeSSMClient{values: map[string]string{}}
		want := map[paramID]interface{}{}
		for i := 0; i < 25; i++ {
			p := param{paramID: paramID{key: fmt.Sprint("key-", i), service: "svc"}}
			params = append(params, p)
			value := faker.Word()
			client.values[name(appEnv.Name, p.service, p.key)] = value
			want[p.paramID] = value
		}
		src, _ := NewAWSSSMSource(AwsSSMOpts.WithAppEnv(appEnv), AwsSSMOpts.withSSMClient(client))()

		got, err := src.GetParameters(context.Background(), params)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, want, got)
		if assert.Len(t, client.gotInputs, 3) {
			assert.Len(t, client.gotInputs[0].Names, 10)
			assert.Len(t, client.gotInputs[2].Names, 5)
		}
	})

	t.Run("client error", func(t *testing.T) {
		clientErr := errors.New(faker.Sentence())
		client := &fakeSSMClient{err: clientErr}
		src, _ := NewAWSSSMSource(AwsSSMOpts.withSSMClient(client))()
		_, err := src.GetParameters(context.Background(), []param{newParam()})
		assert.Equal(t, clientErr, err)
	})
}
