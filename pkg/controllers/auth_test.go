package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

func testApp(t *testing.T) (*fiber.App, *config.AppConfig) {
	t.Helper()

	validity := 5 * time.Minute
	cnf := &config.AppConfig{
		Logger: logrus.New(),
		Client: config.ClientInfo{
			ApiKey:        "testkey",
			Secret:        "testsecret",
			TokenValidity: &validity,
		},
	}

	ac := NewAuthController(cnf, nil, nil)
	app := fiber.New()
	api := app.Group("/api/v1", ac.HandleAuthHeaderCheck)
	api.Post("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app, cnf
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestAuthHeaderCheckValidSignature(t *testing.T) {
	app, cnf := testApp(t)

	body := []byte(`{"hello":"world"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/ping", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-KEY", cnf.Client.ApiKey)
	req.Header.Set("HASH-SIGNATURE", signBody(cnf.Client.Secret, body))

	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
}

func TestAuthHeaderCheckInvalidApiKey(t *testing.T) {
	app, cnf := testApp(t)

	body := []byte(`{}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/ping", bytes.NewReader(body))
	req.Header.Set("API-KEY", "wrong")
	req.Header.Set("HASH-SIGNATURE", signBody(cnf.Client.Secret, body))

	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", res.StatusCode)
	}
}

func TestAuthHeaderCheckBadSignature(t *testing.T) {
	app, cnf := testApp(t)

	body := []byte(`{}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/ping", bytes.NewReader(body))
	req.Header.Set("API-KEY", cnf.Client.ApiKey)
	req.Header.Set("HASH-SIGNATURE", signBody("not-the-secret", body))

	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", res.StatusCode)
	}
}

func TestAuthHeaderCheckMissingSignature(t *testing.T) {
	app, cnf := testApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/ping", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("API-KEY", cnf.Client.ApiKey)

	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", res.StatusCode)
	}
}
