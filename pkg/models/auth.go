package models

import (
	"errors"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/sensestream/sensestream-server/pkg/config"
)

type AuthModel struct {
	app *config.AppConfig
}

func NewAuthModel(app *config.AppConfig) *AuthModel {
	if app == nil {
		app = config.GetConfig()
	}

	return &AuthModel{
		app: app,
	}
}

type DownloadTokenClaims struct {
	SegmentId string `json:"segment_id"`
	TaskId    string `json:"task_id"`
}

type GetDownloadTokenReq struct {
	SegmentId string `json:"segment_id"`
}

// GenerateDownloadToken issues a short lived token that allows fetching
// one segment's audio without the API key headers.
func (a *AuthModel) GenerateDownloadToken(taskId, segmentId string) (string, error) {
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte(a.app.Client.Secret)},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}

	cl := &jwt.Claims{
		Issuer:    a.app.Client.ApiKey,
		NotBefore: jwt.NewNumericDate(time.Now()),
		Expiry:    jwt.NewNumericDate(time.Now().Add(*a.app.Client.TokenValidity)),
		Subject:   segmentId,
	}
	c := &DownloadTokenClaims{
		SegmentId: segmentId,
		TaskId:    taskId,
	}
	return jwt.Signed(sig).Claims(cl).Claims(c).Serialize()
}

// VerifyDownloadToken validates the token and returns its claims.
func (a *AuthModel) VerifyDownloadToken(token string) (*DownloadTokenClaims, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, err
	}

	cl := new(jwt.Claims)
	c := new(DownloadTokenClaims)
	if err := tok.Claims([]byte(a.app.Client.Secret), cl, c); err != nil {
		return nil, err
	}

	err = cl.Validate(jwt.Expected{
		Issuer: a.app.Client.ApiKey,
		Time:   time.Now(),
	})
	if err != nil {
		return nil, errors.New(config.VerificationFailed)
	}

	if c.SegmentId == "" {
		return nil, errors.New(config.VerificationFailed)
	}
	return c, nil
}
