package controllers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"quizforge/config"
	"quizforge/db"
	"quizforge/models"
	"quizforge/services"
	"quizforge/structs"
	"quizforge/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gin-gonic/gin"
)

// RequestVerificationCode issues a verification code for an email address.
// The code is delivered over SMTP when configured; until a production mail
// channel exists the code is also returned to the requester directly.
func RequestVerificationCode(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.RequestCodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	code, err := services.Verification.RequestCode(ctx, request.Email)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to send verification code", "message": err.Error()})
		return
	}

	if cfg.SMTP.Host != "" {
		if err := utils.SendVerificationEmail(cfg, request.Email, code); err != nil {
			log.Printf("Error sending verification email to %s: %v", request.Email, err)
		}
	}

	ctx.JSON(200, gin.H{"message": "Verification code sent", "code": code})
}

// SignUp registers a new account once the caller proves control of the email
// with a verification code.
func SignUp(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.SignUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if !services.Verification.Verify(ctx, request.Email, request.Code) {
		ctx.JSON(401, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	sub, err := signUpWithCognito(cfg, request.Email, request.Password, ctx)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to sign up", "message": err.Error()})
		return
	}

	services.LogActivity(sub, utils.ExtractNameFromEmail(request.Email), request.Email,
		"Account Created", "User created a new account with email verification")

	ctx.JSON(200, gin.H{"message": "Sign-up successful"})
}

// Login signs a user in with email, password and a verification code,
// bootstraps the application profile and returns an API token.
func Login(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	if !services.Verification.Verify(ctx, request.Email, request.Code) {
		ctx.JSON(401, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	accessToken, err := loginWithCognito(cfg, request.Email, request.Password, ctx)
	if err != nil {
		ctx.JSON(401, gin.H{"error": "Failed to sign in", "message": "Invalid email or password"})
		return
	}

	identity, err := getCognitoIdentity(cfg, accessToken, ctx)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to resolve identity", "message": err.Error()})
		return
	}

	profile, err := bootstrapProfile(ctx, identity)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to load profile", "message": err.Error()})
		return
	}

	token, err := utils.GenerateJWTToken(identity.UID, identity.Email)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to generate token", "message": err.Error()})
		return
	}

	services.LogActivity(identity.UID, profile.DisplayName, identity.Email,
		"User Login", "User logged in with email verification")

	ctx.JSON(200, gin.H{"message": "Sign-in successful", "accessToken": token, "user": profile})
}

// GoogleLogin accepts a Cognito access token obtained through the hosted
// federated Google flow, bootstraps the profile and returns an API token.
func GoogleLogin(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.GoogleLoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	identity, err := getCognitoIdentity(cfg, request.AccessToken, ctx)
	if err != nil {
		ctx.JSON(401, gin.H{"error": "Failed to sign in", "message": "Invalid provider token"})
		return
	}

	profile, err := bootstrapProfile(ctx, identity)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to load profile", "message": err.Error()})
		return
	}

	token, err := utils.GenerateJWTToken(identity.UID, identity.Email)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to generate token", "message": err.Error()})
		return
	}

	services.LogActivity(identity.UID, profile.DisplayName, identity.Email,
		"Google Login", "User logged in with Google authentication")

	ctx.JSON(200, gin.H{"message": "Sign-in successful", "accessToken": token, "user": profile})
}

// Logout asks the identity provider to invalidate the session globally.
func Logout(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.LogoutRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := signOutWithCognito(cfg, request.AccessToken, ctx); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to sign out", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Sign-out successful"})
}

func ForgotPassword(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	if err := initiateForgotPassword(cfg, request.Email, ctx); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to initiate password reset", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func VerifyForgotPassword(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request structs.VerifyForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := confirmForgotPassword(cfg, request.Email, request.Code, request.NewPassword, ctx); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to confirm password reset", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Password successfully changed"})
}

// VerifyToken checks an API token supplied in the Authorization header.
func VerifyToken(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		ctx.JSON(401, gin.H{"error": "Missing token"})
		return
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		ctx.JSON(400, gin.H{"error": "Invalid token format"})
		return
	}

	if _, err := utils.ParseJWTToken(tokenParts[1]); err != nil {
		ctx.JSON(401, gin.H{"error": "Invalid or expired token", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Token is valid"})
}

func loadConfig(ctx *gin.Context) *config.Config {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/config.prod.yml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Println("Failed to load config")
		ctx.JSON(500, gin.H{"error": "Internal server error"})
		return nil
	}
	return cfg
}

// bootstrapProfile resolves or lazily creates the application profile for a
// provider identity.
func bootstrapProfile(ctx context.Context, identity *services.ProviderIdentity) (*models.User, error) {
	return db.NewProfileStore().GetOrCreate(ctx, services.NewProfileDefaults(identity))
}

func newCognitoClient(cfg *config.Config, ctx context.Context) (*cognitoidentityprovider.Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Cognito.Region))
	if err != nil {
		log.Println("Error loading AWS config:", err)
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	return cognitoidentityprovider.NewFromConfig(awsCfg), nil
}

func signUpWithCognito(cfg *config.Config, email, password string, ctx *gin.Context) (string, error) {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return "", err
	}

	secretHash := utils.GenerateSecretHash(email, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)

	signupInput := cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(cfg.Cognito.AppClientId),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("nickname"),
				Value: aws.String(utils.ExtractNameFromEmail(email)),
			},
		},
	}

	signupStatus, err := cognitoClient.SignUp(ctx, &signupInput)
	if err != nil {
		log.Println("Error during sign-up:", err)
		return "", fmt.Errorf("sign-up failed: %v", err)
	}

	return aws.ToString(signupStatus.UserSub), nil
}

func loginWithCognito(cfg *config.Config, email, password string, ctx *gin.Context) (string, error) {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return "", err
	}

	secretHash := utils.GenerateSecretHash(email, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)

	authInput := cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(cfg.Cognito.AppClientId),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	}

	authOutput, err := cognitoClient.InitiateAuth(ctx, &authInput)
	if err != nil {
		return "", fmt.Errorf("authentication failed")
	}

	return *authOutput.AuthenticationResult.AccessToken, nil
}

// getCognitoIdentity resolves the stable provider identity behind an access
// token.
func getCognitoIdentity(cfg *config.Config, accessToken string, ctx *gin.Context) (*services.ProviderIdentity, error) {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return nil, err
	}

	user, err := cognitoClient.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	identity := &services.ProviderIdentity{}
	for _, attr := range user.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			identity.UID = aws.ToString(attr.Value)
		case "email":
			identity.Email = aws.ToString(attr.Value)
		case "nickname", "name":
			if identity.DisplayName == "" {
				identity.DisplayName = aws.ToString(attr.Value)
			}
		case "picture":
			identity.AvatarURL = aws.ToString(attr.Value)
		}
	}
	if identity.UID == "" {
		return nil, fmt.Errorf("provider returned no user id")
	}
	return identity, nil
}

func signOutWithCognito(cfg *config.Config, accessToken string, ctx *gin.Context) error {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return err
	}

	_, err = cognitoClient.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return fmt.Errorf("sign-out failed: %v", err)
	}
	return nil
}

func initiateForgotPassword(cfg *config.Config, email string, ctx *gin.Context) error {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)

	_, err = cognitoClient.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(cfg.Cognito.AppClientId),
		Username:   aws.String(email),
		SecretHash: aws.String(secretHash),
	})
	if err != nil {
		return fmt.Errorf("error initiating forgot password: %v", err)
	}
	return nil
}

func confirmForgotPassword(cfg *config.Config, email, code, newPassword string, ctx *gin.Context) error {
	cognitoClient, err := newCognitoClient(cfg, ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)

	_, err = cognitoClient.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(cfg.Cognito.AppClientId),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(secretHash),
	})
	if err != nil {
		return fmt.Errorf("error confirming forgot password: %v", err)
	}
	return nil
}
