package models

import (
	"github.com/sensestream/sensestream-server/pkg/config"
	dbservice "github.com/sensestream/sensestream-server/pkg/services/db"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

type UploadModel struct {
	app    *config.AppConfig
	ds     *dbservice.DatabaseService
	rs     *redisservice.RedisService
	logger *logrus.Entry
}

func NewUploadModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService) *UploadModel {
	if app == nil {
		app = config.GetConfig()
	}
	if ds == nil {
		ds = dbservice.New(app.DB, app.Logger)
	}
	if rs == nil {
		rs = redisservice.New(app.RDS, app.Logger)
	}

	return &UploadModel{
		app:    app,
		ds:     ds,
		rs:     rs,
		logger: app.Logger.WithField("model", "upload"),
	}
}

type UploadedFileInfo struct {
	TaskId   string  `json:"task_id"`
	FileName string  `json:"file_name"`
	FilePath string  `json:"file_path"`
	FileSize int64   `json:"file_size"`
	Duration float64 `json:"duration"`
}

type UploadFromUrlReq struct {
	Url string `json:"url"`
}
