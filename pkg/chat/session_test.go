package chat_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/mocks/mockllms"
	"github.com/effective-security/modelfactory/pkg/chat"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func reply(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}
}

func TestIsQuit(t *testing.T) {
	for _, in := range []string{"quit", "exit", "QUIT", "Exit", " quit \r"} {
		assert.True(t, chat.IsQuit(in), in)
	}
	for _, in := range []string{"", "q", "quit now", "exiting"} {
		assert.False(t, chat.IsQuit(in), in)
	}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()

	var prompts []string
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, msgs, 1)
			prompts = append(prompts, msgs[0].GetContent())
			return reply("Ready"), nil
		}).Times(2)

	var out bytes.Buffer
	s := chat.New(model,
		chat.WithInput(strings.NewReader("hello\n\nQUIT\nnot sent\n")),
		chat.WithOutput(&out),
	)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{chat.VerificationPrompt, "hello"}, prompts)
	assert.Equal(t, "\nSending test prompt...\n"+
		"Response: Ready\n"+
		"\nEntering interactive mode (type 'quit' to exit)\n"+
		"\nPrompt: \nResponse: Ready\n"+
		"\nPrompt: "+
		"\nPrompt: ", out.String())
}

func TestRunEndOfInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(reply("Ready"), nil).Times(2)

	var out bytes.Buffer
	s := chat.New(model,
		chat.WithInput(strings.NewReader("one")),
		chat.WithOutput(&out),
	)
	require.NoError(t, s.Run(context.Background()))
	assert.True(t, strings.HasSuffix(out.String(), "\nPrompt: \n"))
}

func TestRunErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()

	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	s := chat.New(model, chat.WithInput(strings.NewReader("")), chat.WithOutput(&bytes.Buffer{}))
	assert.EqualError(t, s.Run(context.Background()), "connection refused")

	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(reply("Ready"), nil)
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(&llms.ContentResponse{}, nil)
	s = chat.New(model, chat.WithInput(strings.NewReader("hi\n")), chat.WithOutput(&bytes.Buffer{}))
	assert.ErrorIs(t, s.Run(context.Background()), llms.ErrEmptyResponse)
}

func TestSendWithHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()

	var got [][]llms.Message
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			got = append(got, msgs)
			return reply("answer " + msgs[len(msgs)-1].GetContent()), nil
		}).Times(2)

	ctx := context.Background()
	st := store.NewMemoryStore()
	s := chat.New(model,
		chat.WithHistory(st, "s1"),
		chat.WithSystemPrompt("be brief"),
	)

	resp, err := s.Send(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "answer one", resp)

	resp, err = s.Send(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, "answer two", resp)

	require.Len(t, got, 2)
	assert.Len(t, got[0], 2)
	require.Len(t, got[1], 4)
	assert.Equal(t, llms.RoleSystem, got[1][0].Role)
	assert.Equal(t, "be brief", got[1][0].GetContent())
	assert.Equal(t, "one", got[1][1].GetContent())
	assert.Equal(t, llms.RoleAI, got[1][2].Role)
	assert.Equal(t, "answer one", got[1][2].GetContent())
	assert.Equal(t, "two", got[1][3].GetContent())

	msgs, err := st.Messages(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	// a failing store fails the prompt
	s = chat.New(model, chat.WithHistory(st, ""))
	_, err = s.Send(ctx, "three")
	assert.ErrorIs(t, err, store.ErrInvalidSession)
}

func TestStreaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []llms.Message, opts ...llms.CallOption) (*llms.ContentResponse, error) {
			o := llms.NewCallOptions(opts...)
			require.NotNil(t, o.StreamingFunc)
			require.NoError(t, o.StreamingFunc(ctx, []byte("Rea")))
			require.NoError(t, o.StreamingFunc(ctx, []byte("dy")))
			return reply("Ready"), nil
		})

	var out bytes.Buffer
	s := chat.New(model,
		chat.WithInput(strings.NewReader("exit\n")),
		chat.WithOutput(&out),
		chat.WithStreaming(true),
		chat.WithLabelRenderer(func(s string) string { return "[" + s + "]" }),
	)
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "[Response:] Ready\n")
	assert.Contains(t, out.String(), "\n[Prompt:] ")
	assert.Equal(t, 1, strings.Count(out.String(), "Ready"))
}

func TestUnsupportedCapabilities(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("custom").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderType("CUSTOM")).AnyTimes()
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []llms.Message, opts ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, msgs, 1)
			assert.Equal(t, llms.RoleHuman, msgs[0].Role)
			assert.Empty(t, opts)
			return reply("ok"), nil
		})

	var out bytes.Buffer
	s := chat.New(model,
		chat.WithOutput(&out),
		chat.WithSystemPrompt("be brief"),
		chat.WithStreaming(true),
	)
	resp, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Empty(t, out.String())
}

func TestRunLongPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().Name().Return("llama2").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()

	long := strings.Repeat("a", 200*1024)
	var prompts []string
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			prompts = append(prompts, msgs[0].GetContent())
			return reply("Ready"), nil
		}).Times(2)

	s := chat.New(model,
		chat.WithInput(strings.NewReader(long+"\nquit\n")),
		chat.WithOutput(&bytes.Buffer{}),
	)
	require.NoError(t, s.Run(context.Background()))
	require.Len(t, prompts, 2)
	assert.Len(t, prompts[1], len(long))
}
