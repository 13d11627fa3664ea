package models

import (
	"github.com/sensestream/sensestream-server/pkg/audio"
	"github.com/sensestream/sensestream-server/pkg/config"
	dbservice "github.com/sensestream/sensestream-server/pkg/services/db"
	natsservice "github.com/sensestream/sensestream-server/pkg/services/nats"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

type TaskModel struct {
	app          *config.AppConfig
	ds           *dbservice.DatabaseService
	rs           *redisservice.RedisService
	natsService  *natsservice.NatsService
	preprocessor *audio.Preprocessor
	slicer       *audio.Slicer
	logger       *logrus.Entry
}

func NewTaskModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService) *TaskModel {
	if app == nil {
		app = config.GetConfig()
	}
	if ds == nil {
		ds = dbservice.New(app.DB, app.Logger)
	}
	if rs == nil {
		rs = redisservice.New(app.RDS, app.Logger)
	}

	return &TaskModel{
		app:          app,
		ds:           ds,
		rs:           rs,
		natsService:  natsservice.New(app),
		preprocessor: audio.NewPreprocessor(app.AudioPreprocessing, app.Logger),
		slicer:       audio.NewSlicer(app.AudioSegmentation, app.AudioPreprocessing.SilenceThresholdDB, app.Logger),
		logger:       app.Logger.WithField("model", "task"),
	}
}
