package email

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/require"
)

type fakeSESClient struct {
	inputs      []*ses.SendTemplatedEmailInput
	returnError bool
}

func (c *fakeSESClient) SendTemplatedEmail(
	ctx context.Context,
	params *ses.SendTemplatedEmailInput,
	optFns ...func(*ses.Options),
) (*ses.SendTemplatedEmailOutput, error) {
	if c.returnError {
		return nil, errors.New("ses is unavailable")
	}
	c.inputs = append(c.inputs, params)
	return &ses.SendTemplatedEmailOutput{MessageId: aws.String("test")}, nil
}

func TestSendPasswordResetLink(t *testing.T) {
	client := &fakeSESClient{}
	sender := newEmailSender(client, "noreply@example.com", "password-reset")
	link, err := url.Parse("https://app.example.com/reset-password?token=abc")
	require.NoError(t, err)

	err = sender.SendPasswordResetLink(context.Background(), "user@example.com", *link, "Test User")
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	require.Equal(t, "noreply@example.com", aws.ToString(input.Source))
	require.Equal(t, []string{"user@example.com"}, input.Destination.ToAddresses)
	require.Equal(t, "password-reset", aws.ToString(input.Template))
	require.JSONEq(
		t,
		`{"passwordResetUrl": "https://app.example.com/reset-password?token=abc", "username": "Test User"}`,
		aws.ToString(input.TemplateData),
	)
}

func TestSendPasswordResetLinkErrors(t *testing.T) {
	link := url.URL{Scheme: "https", Host: "app.example.com"}

	client := &fakeSESClient{}
	err := newEmailSender(client, "noreply@example.com", "t").
		SendPasswordResetLink(context.Background(), "", link, "")
	require.Error(t, err)
	require.Empty(t, client.inputs)

	client = &fakeSESClient{returnError: true}
	err = newEmailSender(client, "noreply@example.com", "t").
		SendPasswordResetLink(context.Background(), "user@example.com", link, "")
	require.Error(t, err)
}
