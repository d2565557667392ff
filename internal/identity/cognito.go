package identity

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/taskdeck/taskdeck/internal/config"
)

// Attribute is a single provider-side user attribute update.
type Attribute struct {
	Name  string
	Value string
}

// Gateway is the identity provider surface the profile/credential operations
// need. The provider remains the source of truth for credentials; this
// service only mirrors display state locally.
type Gateway interface {
	// UpdateUserAttributes applies attribute changes for the given username
	// using pool-admin credentials.
	UpdateUserAttributes(ctx context.Context, username string, attrs []Attribute) error
	// SetUserPassword sets a new permanent password for the given username.
	SetUserPassword(ctx context.Context, username, password string) error
	// RequestEmailVerificationCode asks the provider to send a fresh email
	// verification code to the identity behind the access token.
	RequestEmailVerificationCode(ctx context.Context, accessToken string) error
	// ConfirmEmailAttribute submits a verification code for the email
	// attribute of the identity behind the access token.
	ConfirmEmailAttribute(ctx context.Context, accessToken, code string) error
}

// CognitoGateway implements Gateway against the Cognito user pool API.
type CognitoGateway struct {
	client     *cognitoidentityprovider.Client
	userPoolID string
}

func NewCognitoGateway(ctx context.Context, conf *config.Config) (*CognitoGateway, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.COGNITO_REGION))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &CognitoGateway{
		client:     cognitoidentityprovider.NewFromConfig(awsConf),
		userPoolID: conf.COGNITO_USER_POOL_ID,
	}, nil
}

func (g *CognitoGateway) UpdateUserAttributes(ctx context.Context, username string, attrs []Attribute) error {
	userAttributes := make([]types.AttributeType, 0, len(attrs))
	for _, attr := range attrs {
		userAttributes = append(userAttributes, types.AttributeType{
			Name:  aws(attr.Name),
			Value: aws(attr.Value),
		})
	}

	_, err := g.client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId:     aws(g.userPoolID),
		Username:       aws(username),
		UserAttributes: userAttributes,
	})
	if err != nil {
		return fmt.Errorf("failed to update user attributes: %w", err)
	}

	return nil
}

func (g *CognitoGateway) SetUserPassword(ctx context.Context, username, password string) error {
	_, err := g.client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws(g.userPoolID),
		Username:   aws(username),
		Password:   aws(password),
		Permanent:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to set user password: %w", err)
	}

	return nil
}

func (g *CognitoGateway) RequestEmailVerificationCode(ctx context.Context, accessToken string) error {
	_, err := g.client.GetUserAttributeVerificationCode(ctx, &cognitoidentityprovider.GetUserAttributeVerificationCodeInput{
		AccessToken:   aws(accessToken),
		AttributeName: aws("email"),
	})
	if err != nil {
		return fmt.Errorf("failed to request verification code: %w", err)
	}

	return nil
}

func (g *CognitoGateway) ConfirmEmailAttribute(ctx context.Context, accessToken, code string) error {
	_, err := g.client.VerifyUserAttribute(ctx, &cognitoidentityprovider.VerifyUserAttributeInput{
		AccessToken:   aws(accessToken),
		AttributeName: aws("email"),
		Code:          aws(code),
	})
	if err != nil {
		return fmt.Errorf("failed to verify email attribute: %w", err)
	}

	return nil
}

func aws(s string) *string {
	return &s
}
