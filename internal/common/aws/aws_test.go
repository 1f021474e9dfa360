package aws

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestSNSClient_PublishToTopic(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "arn:aws:sns:us-east-1:123:overfishing", aws.ToString(params.TopicArn))
			assert.Equal(t, "Overfishing detected", aws.ToString(params.Subject))
			assert.Equal(t, "2024-01", aws.ToString(params.MessageAttributes["date"].StringValue))
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		},
	}

	id, err := NewSNSClientWithAPI(mock, "arn:aws:sns:us-east-1:123:overfishing").
		PublishToTopic(context.Background(), "Overfishing detected", "body", map[string]string{"date": "2024-01"})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestSESClient_SendText(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, []string{"ops@example.org"}, params.Destination.ToAddresses)
			assert.Equal(t, "alerts@example.org", aws.ToString(params.Source))
			assert.Equal(t, "body", aws.ToString(params.Message.Body.Text.Data))
			return nil, stderrors.New("throttled")
		},
	}

	_, err := NewSESClientWithAPI(mock, "alerts@example.org").
		SendText(context.Background(), []string{"ops@example.org"}, "subject", "body")
	assert.EqualError(t, err, "throttled")
}
