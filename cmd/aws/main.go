package main

import (
	"context"
	"encoding/json"
	"fmt"
	"forgotpassword/internal/config"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/spf13/cobra"
)

const (
	passwordResetSubject = "Reset your password"
	passwordResetText    = "Hello {{username}},\n\n" +
		"Someone requested a password reset for your account. " +
		"Follow the link below to choose a new password:\n\n" +
		"{{passwordResetUrl}}\n\n" +
		"The link expires soon. If you did not request a reset, ignore this email."
	passwordResetHTML = "<p>Hello {{username}},</p>" +
		"<p>Someone requested a password reset for your account. " +
		"Follow the link below to choose a new password:</p>" +
		`<p><a href="{{passwordResetUrl}}">Reset password</a></p>` +
		"<p>The link expires soon. If you did not request a reset, ignore this email.</p>"
)

var rootCmd = &cobra.Command{
	Use:   "aws",
	Short: "Manage the Amazon SES password reset email template",
}

var createTemplateCmd = &cobra.Command{
	Use:   "create-template",
	Short: "Create the password reset email template",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := newSesClient()
		if err != nil {
			return err
		}
		result, err := svc.CreateTemplate(context.Background(), &ses.CreateTemplateInput{
			Template: &types.Template{
				TemplateName: aws.String(cfg.AwsEmailPasswordResetTemplate),
				SubjectPart:  aws.String(passwordResetSubject),
				TextPart:     aws.String(passwordResetText),
				HtmlPart:     aws.String(passwordResetHTML),
			},
		})
		if err != nil {
			return err
		}
		fmt.Println("Success:")
		fmt.Println(result)
		return nil
	},
}

var deleteTemplateCmd = &cobra.Command{
	Use:   "delete-template",
	Short: "Delete the password reset email template",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := newSesClient()
		if err != nil {
			return err
		}
		result, err := svc.DeleteTemplate(context.Background(), &ses.DeleteTemplateInput{
			TemplateName: aws.String(cfg.AwsEmailPasswordResetTemplate),
		})
		if err != nil {
			return err
		}
		fmt.Println("Success:")
		fmt.Println(result)
		return nil
	},
}

var sendTemplateCmd = &cobra.Command{
	Use:   "send-template <to> <link>",
	Short: "Send a sample password reset email",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := newSesClient()
		if err != nil {
			return err
		}
		data, err := json.Marshal(map[string]string{
			"passwordResetUrl": args[1],
			"username":         args[0],
		})
		if err != nil {
			return err
		}
		result, err := svc.SendTemplatedEmail(context.Background(), &ses.SendTemplatedEmailInput{
			Source: aws.String(cfg.AwsEmailSender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{args[0]},
			},
			Template:     aws.String(cfg.AwsEmailPasswordResetTemplate),
			TemplateData: aws.String(string(data)),
		})
		if err != nil {
			return err
		}
		fmt.Println("Success:")
		fmt.Println(result)
		return nil
	},
}

func newSesClient() (*config.SesConfig, *ses.Client, error) {
	cfg, err := config.LoadSes()
	if err != nil {
		return nil, nil, err
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, nil, err
	}
	return cfg, ses.NewFromConfig(awsCfg), nil
}

func init() {
	rootCmd.AddCommand(createTemplateCmd, deleteTemplateCmd, sendTemplateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
