package llms_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/mocks/mockllms"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_MessageFromTextParts(t *testing.T) {
	t.Parallel()

	msg := llms.MessageFromTextParts(llms.RoleHuman, "a", "b", "c")
	assert.Equal(t, llms.RoleHuman, msg.Role)
	require.Len(t, msg.Parts, 3)
	assert.Equal(t, llms.TextContent{Text: "b"}, msg.Parts[1])
	assert.Equal(t, "a\nb\nc", msg.GetContent())
	assert.Empty(t, llms.Message{Role: llms.RoleAI}.GetContent())
}

func Test_GenerateFromSinglePrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mockllms.NewMockModel(ctrl)
	ctx := context.Background()

	m.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, messages, 1)
			assert.Equal(t, llms.RoleHuman, messages[0].Role)
			assert.Equal(t, "ping", messages[0].GetContent())
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "pong"}},
			}, nil
		})

	resp, err := llms.GenerateFromSinglePrompt(ctx, m, "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)

	m.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(&llms.ContentResponse{}, nil)
	_, err = llms.GenerateFromSinglePrompt(ctx, m, "ping")
	assert.ErrorIs(t, err, llms.ErrEmptyResponse)

	m.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	_, err = llms.GenerateFromSinglePrompt(ctx, m, "ping")
	assert.EqualError(t, err, "boom")
}

func Test_CallOptions(t *testing.T) {
	t.Parallel()

	opts := llms.NewCallOptions(
		llms.WithModel("m"),
		llms.WithMaxTokens(10),
		llms.WithTemperature(0.2),
		llms.WithTopP(0.8),
		llms.WithTopK(20),
		llms.WithSeed(7),
		llms.WithStopWords([]string{"END"}),
		llms.WithRepetitionPenalty(1.1),
		llms.WithFrequencyPenalty(0.1),
		llms.WithPresencePenalty(0.3),
	)
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, 10, opts.MaxTokens)
	assert.Equal(t, 0.2, opts.Temperature)
	assert.Equal(t, 0.8, opts.TopP)
	assert.Equal(t, 20, opts.TopK)
	assert.Equal(t, 7, opts.Seed)
	assert.Equal(t, []string{"END"}, opts.StopWords)
	assert.Equal(t, 1.1, opts.RepetitionPenalty)
	assert.Equal(t, 0.1, opts.FrequencyPenalty)
	assert.Equal(t, 0.3, opts.PresencePenalty)
	assert.Nil(t, opts.StreamingFunc)

	assert.True(t, llms.ProviderOllama.Supports(llms.CapabilitySelfHosted))
	assert.False(t, llms.ProviderOpenAI.Supports(llms.CapabilitySelfHosted))
	assert.True(t, llms.ProviderLMStudio.Supports(llms.CapabilitySystemPrompt))
}
