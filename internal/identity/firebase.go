package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/domain"
)

// Sign-in failures reported by the Identity Toolkit that mean bad credentials rather than an
// outage.
var credentialErrors = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
	"MISSING_PASSWORD",
}

type userManager interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// Firebase registers users with the Admin SDK and checks passwords with the Identity Toolkit
// REST API, which the Admin SDK does not expose.
type Firebase struct {
	users   userManager
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewFirebase(ctx context.Context, conf *config.AuthConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp -> %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth -> %w", err)
	}

	return newFirebase(client, &http.Client{Timeout: 10 * time.Second}, conf.FirebaseAPIKey, conf.IdentityToolkitURL), nil
}

func newFirebase(users userManager, client *http.Client, apiKey, baseURL string) *Firebase {
	return &Firebase{
		users:   users,
		client:  client,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *Firebase) CreateAccount(ctx context.Context, email, password string) (domain.Account, error) {
	params := (&firebaseauth.UserToCreate{}).Email(email).Password(password)

	record, err := p.users.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return domain.Account{}, ErrEmailExists
		}

		return domain.Account{}, fmt.Errorf("p.users.CreateUser -> %w", err)
	}

	return domain.Account{
		UID:   record.UID,
		Email: record.Email,
	}, nil
}

// DeleteAccount removes an account whose local user could not be stored.
func (p *Firebase) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.users.DeleteUser(ctx, uid); err != nil && !firebaseauth.IsUserNotFound(err) {
		return fmt.Errorf("p.users.DeleteUser -> %w", err)
	}

	return nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Firebase) VerifyPassword(ctx context.Context, email, password string) (domain.Account, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return domain.Account{}, err
	}

	endpoint := p.baseURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Account{}, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Account{}, fmt.Errorf("p.client.Do -> %w", err)
	}
	defer resp.Body.Close()

	var out signInResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Account{}, fmt.Errorf("decode sign-in response (status %d) -> %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != nil && isCredentialError(out.Error.Message) {
			return domain.Account{}, ErrInvalidCredentials
		}

		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return domain.Account{}, fmt.Errorf("identity toolkit sign-in failed: status=%d message=%s", resp.StatusCode, msg)
	}

	return domain.Account{
		UID:   out.LocalID,
		Email: out.Email,
	}, nil
}

// Messages can carry a suffix, e.g. "INVALID_PASSWORD : ...".
func isCredentialError(message string) bool {
	for _, code := range credentialErrors {
		if strings.HasPrefix(message, code) {
			return true
		}
	}

	return false
}
