package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/config"
)

type mockPutObject struct {
	mock.Mock
	body []byte
}

func (m *mockPutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key), aws.ToString(params.ContentType))
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestArchive_Put(t *testing.T) {
	client := new(mockPutObject)
	client.On("PutObject", "caixa-reports", "reports/alice/x.pdf", "application/pdf").
		Return(&s3.PutObjectOutput{}, nil)

	a := NewArchive(client, "caixa-reports", zerolog.Nop())
	require.NoError(t, a.Put(context.Background(), "reports/alice/x.pdf", []byte("%PDF-1.3")))

	assert.True(t, a.Enabled())
	assert.Equal(t, []byte("%PDF-1.3"), client.body)
	client.AssertExpectations(t)
}

func TestArchive_PutError(t *testing.T) {
	client := new(mockPutObject)
	client.On("PutObject", "b", "k", "application/pdf").Return(nil, errors.New("access denied"))

	a := NewArchive(client, "b", zerolog.Nop())
	err := a.Put(context.Background(), "k", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewClient_StaticCredentials(t *testing.T) {
	client, err := NewClient(context.Background(), config.ArchiveConfig{
		Region:          "sa-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "sa-east-1", opts.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key", creds.AccessKeyID)
}
