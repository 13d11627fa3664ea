package models

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sensestream/sensestream-server/pkg/config"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

type SegmentModel struct {
	app    *config.AppConfig
	rs     *redisservice.RedisService
	logger *logrus.Entry
}

func NewSegmentModel(app *config.AppConfig, rs *redisservice.RedisService) *SegmentModel {
	if app == nil {
		app = config.GetConfig()
	}
	if rs == nil {
		rs = redisservice.New(app.RDS, app.Logger)
	}

	return &SegmentModel{
		app:    app,
		rs:     rs,
		logger: app.Logger.WithField("model", "segment"),
	}
}

func (m *SegmentModel) GetSegment(segmentId string) (*redisservice.SegmentInfo, error) {
	info, err := m.rs.GetSegment(segmentId)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New(config.RequestedSegmentNotExist)
	}
	return info, nil
}

// GetSegmentAudioPath resolves a segment's wav file for download. The
// path stored in redis is validated to still live under the temp dir so
// a tampered hash cannot read arbitrary files.
func (m *SegmentModel) GetSegmentAudioPath(segmentId string) (string, error) {
	info, err := m.GetSegment(segmentId)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(info.FilePath)
	if err != nil {
		return "", err
	}
	tempDir, err := filepath.Abs(m.app.Audio.TempDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(tempDir, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", errors.New(config.RequestedSegmentNotExist)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", errors.New(config.RequestedSegmentNotExist)
	}
	return abs, nil
}
