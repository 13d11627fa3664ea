package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/models"
)

// AuthController holds dependencies for auth-related handlers.
type AuthController struct {
	AppConfig    *config.AppConfig
	AuthModel    *models.AuthModel
	SegmentModel *models.SegmentModel
}

// NewAuthController creates a new AuthController.
func NewAuthController(config *config.AppConfig, authModel *models.AuthModel, segmentModel *models.SegmentModel) *AuthController {
	return &AuthController{
		AppConfig:    config,
		AuthModel:    authModel,
		SegmentModel: segmentModel,
	}
}

// HandleAuthHeaderCheck is a middleware to check API-KEY & HASH-SIGNATURE.
func (ac *AuthController) HandleAuthHeaderCheck(c *fiber.Ctx) error {
	apiKey := c.Get("API-KEY", "")
	signature := c.Get("HASH-SIGNATURE", "")
	body := c.Body()

	if apiKey != ac.AppConfig.Client.ApiKey {
		return commonErrorResponse(c, "invalid API key", fiber.StatusUnauthorized)
	}
	if signature == "" {
		return commonErrorResponse(c, "hash signature value required", fiber.StatusUnauthorized)
	}

	mac := hmac.New(sha256.New, []byte(ac.AppConfig.Client.Secret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expectedSignature), []byte(signature)) != 1 {
		return commonErrorResponse(c, "can't verify provided information", fiber.StatusUnauthorized)
	}

	return c.Next()
}

// HandleGenerateDownloadToken issues a token for fetching one segment's
// wav without the API headers.
func (ac *AuthController) HandleGenerateDownloadToken(c *fiber.Ctx) error {
	req := new(models.GetDownloadTokenReq)
	if err := c.BodyParser(req); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}
	if req.SegmentId == "" {
		return commonErrorResponse(c, "segment_id required", fiber.StatusBadRequest)
	}

	segment, err := ac.SegmentModel.GetSegment(req.SegmentId)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusNotFound)
	}

	token, err := ac.AuthModel.GenerateDownloadToken(segment.TaskId, segment.SegmentId)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"token":  token,
	})
}

// HandleDownloadSegment validates a download token and serves the file.
func (ac *AuthController) HandleDownloadSegment(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return commonErrorResponse(c, "token required", fiber.StatusUnauthorized)
	}

	claims, err := ac.AuthModel.VerifyDownloadToken(token)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusUnauthorized)
	}

	filePath, err := ac.SegmentModel.GetSegmentAudioPath(claims.SegmentId)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusNotFound)
	}

	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}

	c.Set("Content-Type", mtype.String())
	c.Set("Content-Disposition", "attachment; filename="+claims.SegmentId+".wav")
	return c.SendFile(filePath)
}
