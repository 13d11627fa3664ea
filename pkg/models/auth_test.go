package models

import (
	"testing"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

func testAuthApp() *config.AppConfig {
	validity := 5 * time.Minute
	return &config.AppConfig{
		Logger: logrus.New(),
		Client: config.ClientInfo{
			ApiKey:        "testkey",
			Secret:        "testsecret",
			TokenValidity: &validity,
		},
	}
}

func TestDownloadTokenRoundTrip(t *testing.T) {
	a := NewAuthModel(testAuthApp())

	token, err := a.GenerateDownloadToken("task-1", "task-1_segment_0")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := a.VerifyDownloadToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.TaskId != "task-1" {
		t.Errorf("expected task-1, got %s", claims.TaskId)
	}
	if claims.SegmentId != "task-1_segment_0" {
		t.Errorf("expected task-1_segment_0, got %s", claims.SegmentId)
	}
}

func TestDownloadTokenWrongSecret(t *testing.T) {
	a := NewAuthModel(testAuthApp())
	token, err := a.GenerateDownloadToken("task-1", "task-1_segment_0")
	if err != nil {
		t.Fatal(err)
	}

	other := testAuthApp()
	other.Client.Secret = "different"
	b := NewAuthModel(other)

	if _, err := b.VerifyDownloadToken(token); err == nil {
		t.Error("expected verification failure with a different secret")
	}
}

func TestDownloadTokenGarbage(t *testing.T) {
	a := NewAuthModel(testAuthApp())
	if _, err := a.VerifyDownloadToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
