package factory

import (
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sensestream/sensestream-server/pkg/config"
)

// NewNatsConnection connects to nats when event publishing is enabled.
// A disabled config leaves appCnf.NatsConn nil and is not an error.
func NewNatsConnection(appCnf *config.AppConfig) error {
	info := appCnf.NatsInfo
	if !info.Enabled {
		return nil
	}

	nc, err := nats.Connect(strings.Join(info.NatsUrls, ","),
		nats.Name("sensestream-server"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return err
	}

	appCnf.NatsConn = nc
	appCnf.Logger.WithField("servers", strings.Join(info.NatsUrls, ",")).Info("successfully connected to NATS")
	return nil
}
