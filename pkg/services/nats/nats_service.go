package natsservice

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

type NatsService struct {
	ctx    context.Context
	app    *config.AppConfig
	nc     *nats.Conn
	logger *logrus.Entry
}

func New(app *config.AppConfig) *NatsService {
	if app == nil {
		app = config.GetConfig()
	}

	return &NatsService{
		ctx:    context.Background(),
		app:    app,
		nc:     app.NatsConn,
		logger: app.Logger.WithField("service", "nats"),
	}
}

// Enabled reports whether events should be published at all. The
// connection stays nil when nats was not configured.
func (s *NatsService) Enabled() bool {
	return s.app.NatsInfo.Enabled && s.nc != nil
}
