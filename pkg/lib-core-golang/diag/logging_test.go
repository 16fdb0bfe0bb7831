package diag

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tst "github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/internal/testing"

	"github.com/bxcodec/faker/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_logrusLogger_log(t *testing.T) {
	type testCase struct {
		name   string
		ctx    context.Context
		msg    string
		args   []interface{}
		assert func(t *testing.T, got map[string]interface{})
	}

	tests := []func() testCase{
		func() testCase {
			msg := faker.Sentence()
			return testCase{
				name: "plain msg",
				msg:  msg,
				assert: func(t *testing.T, got map[string]interface{}) {
					assert.Equal(t, msg, got["msg"])
					assert.Equal(t, float64(1), got["v"])
					assert.NotContains(t, got, "context")
				},
			}
		},
		func() testCase {
			word := faker.Word()
			return testCase{
				name: "formatted msg",
				msg:  "Account %v not found",
				args: []interface{}{word},
				assert: func(t *testing.T, got map[string]interface{}) {
					assert.Equal(t, "Account "+word+" not found", got["msg"])
				},
			}
		},
		func() testCase {
			requestID := faker.UUIDHyphenated()
			accountID := faker.UUIDHyphenated()
			ctx := ContextWithRequestID(context.Background(), requestID)
			ctx = ContextWithAccountID(ctx, accountID)
			return testCase{
				name: "context values",
				ctx:  ctx,
				msg:  faker.Sentence(),
				assert: func(t *testing.T, got map[string]interface{}) {
					assert.Equal(t, map[string]interface{}{
						"requestID": requestID,
						"accountID": accountID,
					}, got["context"])
				},
			}
		},
		func() testCase {
			return testCase{
				name: "empty context",
				ctx:  context.Background(),
				msg:  faker.Sentence(),
				assert: func(t *testing.T, got map[string]interface{}) {
					assert.NotContains(t, got, "context")
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := newLogrusLogger(&out)
			logger.log(tt.ctx, logrus.InfoLevel, tt.msg, tt.args...)

			got := map[string]interface{}{}
			tst.JSONUnmarshalBuffer(&out, &got)
			tt.assert(t, got)
		})
	}
}

func Test_logrusLogger_levels(t *testing.T) {
	now := time.Now()
	type testCase struct {
		level string
		log   func(logger Logger, msg string)
	}
	tests := []testCase{
		{"error", func(logger Logger, msg string) { logger.Error(nil, msg) }},
		{"warning", func(logger Logger, msg string) { logger.Warn(nil, msg) }},
		{"info", func(logger Logger, msg string) { logger.Info(nil, msg) }},
		{"debug", func(logger Logger, msg string) { logger.Debug(nil, msg) }},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var out bytes.Buffer
			msg := faker.Sentence()
			err := errors.New(faker.Sentence())
			data := MsgData{"accountID": faker.UUIDHyphenated()}

			logger := newLogrusLogger(&out).withTime(now)
			tt.log(logger.WithError(err).WithData(data), msg)

			got := map[string]interface{}{}
			tst.JSONUnmarshalBuffer(&out, &got)
			assert.Equal(t, map[string]interface{}{
				"level":   tt.level,
				"msg":     msg,
				"time":    now.Format(time.RFC3339),
				"error":   err.Error(),
				"msgData": map[string]interface{}(data),
				"v":       float64(1),
			}, got)
		})
	}
}

func Test_logrusLogger_minLevel(t *testing.T) {
	var out bytes.Buffer
	logger := newLogrusLogger(&out)
	logger.entry.Logger.SetLevel(logrus.WarnLevel)

	logger.Debug(nil, faker.Sentence())
	logger.Info(nil, faker.Sentence())
	assert.Equal(t, 0, out.Len())

	logger.Warn(nil, faker.Sentence())
	assert.NotEqual(t, 0, out.Len())
}

func Test_logrusLogger_derivedIsIsolated(t *testing.T) {
	var out bytes.Buffer
	logger := newLogrusLogger(&out)
	_ = logger.WithData(MsgData{"key": faker.Word()})

	logger.Info(nil, faker.Sentence())
	got := map[string]interface{}{}
	tst.JSONUnmarshalBuffer(&out, &got)
	assert.NotContains(t, got, "msgData")
}

func Benchmark_logrusLogger_log(b *testing.B) {
	var out bytes.Buffer
	logger := newLogrusLogger(&out)
	ctx := ContextWithRequestID(context.Background(), faker.Word())
	for n := 0; n < b.N; n++ {
		logger.log(ctx, logrus.DebugLevel, "Some msg %v", "val")
	}
}
