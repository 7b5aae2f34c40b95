package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	c "forgotpassword/internal/core/domain/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesClient interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

type EmailSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                string
	passwordResetTemplate string
}

func NewEmailSender(awsConfig aws.Config, sender string, passwordResetTemplate string) *EmailSender {
	return newEmailSender(ses.NewFromConfig(awsConfig), sender, passwordResetTemplate)
}

func newEmailSender(client sesClient, sender string, passwordResetTemplate string) *EmailSender {
	return &EmailSender{
		ses:                   client,
		sender:                sender,
		passwordResetTemplate: passwordResetTemplate,
	}
}

func (s *EmailSender) SendPasswordResetLink(
	ctx context.Context,
	email c.Email,
	link url.URL,
	displayName string,
) error {
	if email == "" {
		return errors.New("recipient email is not defined")
	}

	templateParamsBytes, err := json.Marshal(
		passwordResetTemplateParams{
			PasswordResetUrl: link.String(),
			Username:         displayName,
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: aws.String(s.sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(email)},
			},
			Template:     aws.String(s.passwordResetTemplate),
			TemplateData: &templateParams,
		},
	)
	return err
}

type passwordResetTemplateParams struct {
	PasswordResetUrl string `json:"passwordResetUrl"`
	Username         string `json:"username"`
}
