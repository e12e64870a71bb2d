package services

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"burgerhub-backend/utils"
)

// BankConfig holds the payment gateway configuration
type BankConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// PublicKeyPEM is the bank's published RSA public key used to verify
	// inbound callback signatures
	PublicKeyPEM string
	CallbackURL  string
	SuccessURL   string
	FailURL      string
}

// BankService handles all calls to the external bank API: OAuth token
// exchange, remote order creation and callback signature verification.
type BankService struct {
	config     *BankConfig
	httpClient *http.Client
	publicKey  *rsa.PublicKey
}

var (
	bankService *BankService
	bankOnce    sync.Once
)

// GetBankService returns singleton instance of BankService
func GetBankService() *BankService {
	bankOnce.Do(func() {
		config := &BankConfig{
			BaseURL:      os.Getenv("BANK_BASE_URL"),
			ClientID:     os.Getenv("BANK_CLIENT_ID"),
			ClientSecret: os.Getenv("BANK_CLIENT_SECRET"),
			PublicKeyPEM: strings.ReplaceAll(os.Getenv("BANK_PUBLIC_KEY"), `\n`, "\n"),
			CallbackURL:  os.Getenv("BANK_CALLBACK_URL"),
			SuccessURL:   os.Getenv("BANK_SUCCESS_URL"),
			FailURL:      os.Getenv("BANK_FAIL_URL"),
		}

		if config.BaseURL == "" {
			fmt.Println("WARNING: BANK_BASE_URL is empty, using sandbox URL")
			config.BaseURL = "https://sandbox.bank.example.com"
		}

		bankService = NewBankService(config)
	})
	return bankService
}

// NewBankService creates a new instance of BankService
func NewBankService(config *BankConfig) *BankService {
	bs := &BankService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	if key, err := parseRSAPublicKey(config.PublicKeyPEM); err == nil {
		bs.publicKey = key
	}
	return bs
}

// ValidateConfig validates the bank configuration
func (bs *BankService) ValidateConfig() error {
	if bs.config.BaseURL == "" {
		return fmt.Errorf("BANK_BASE_URL is not set")
	}
	if bs.config.ClientID == "" {
		return fmt.Errorf("BANK_CLIENT_ID is not set")
	}
	if bs.config.ClientSecret == "" {
		return fmt.Errorf("BANK_CLIENT_SECRET is not set")
	}
	if bs.config.PublicKeyPEM == "" {
		return fmt.Errorf("BANK_PUBLIC_KEY is not set")
	}
	if bs.config.CallbackURL == "" {
		return fmt.Errorf("BANK_CALLBACK_URL is not set")
	}
	return nil
}

// GetAccessToken exchanges client credentials for a bearer token. Token
// failures are fatal to the current checkout attempt and surfaced
// verbatim: credentials misconfiguration is not transient, so there is no
// silent retry here.
func (bs *BankService) GetAccessToken() (string, error) {
	tokenURL := fmt.Sprintf("%s/oauth2/token", bs.config.BaseURL)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating token request: %v", err)
	}
	req.SetBasicAuth(bs.config.ClientID, bs.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error requesting token: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading token response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &utils.GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("error unmarshaling token response: %v", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("bank returned empty access token: %s", string(body))
	}

	return tokenResp.AccessToken, nil
}

// RemoteOrderResponse represents the bank's create-order response
type RemoteOrderResponse struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// CreateRemoteOrder creates a payment order at the bank and returns the
// redirect URL the customer completes the card payment on. externalID is
// the uuid shared between this system and the bank; it is globally unique
// across the combined order/top-up id space.
func (bs *BankService) CreateRemoteOrder(externalID string, amount float64, basketDescription string) (string, error) {
	token, err := bs.GetAccessToken()
	if err != nil {
		return "", err
	}

	orderURL := fmt.Sprintf("%s/v1/orders", bs.config.BaseURL)

	payload := map[string]interface{}{
		"external_order_id": externalID,
		"amount":            fmt.Sprintf("%.2f", amount),
		"description":       basketDescription,
		"callback_url":      bs.config.CallbackURL,
		"success_url":       bs.config.SuccessURL,
		"fail_url":          bs.config.FailURL,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequest("POST", orderURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &utils.GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var orderResp RemoteOrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}
	if orderResp.CheckoutURL == "" {
		return "", &utils.GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return orderResp.CheckoutURL, nil
}

// VerifyCallbackSignature checks the base64 RSA-SHA256 signature over the
// raw callback body against the bank's public key. This is the sole
// authentication for inbound payment confirmations.
func (bs *BankService) VerifyCallbackSignature(signatureHeader string, rawBody []byte) bool {
	if bs.publicKey == nil || signatureHeader == "" {
		return false
	}

	signature, err := base64.StdEncoding.DecodeString(signatureHeader)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(rawBody)
	return rsa.VerifyPKCS1v15(bs.publicKey, crypto.SHA256, digest[:], signature) == nil
}

func parseRSAPublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in bank public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// some banks publish PKCS#1 keys
		if rsaKey, err2 := x509.ParsePKCS1PublicKey(block.Bytes); err2 == nil {
			return rsaKey, nil
		}
		return nil, err
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("bank public key is not RSA")
	}
	return rsaKey, nil
}
