package factory

import (
	"context"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/controllers"
	"github.com/sensestream/sensestream-server/pkg/models"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	AuthController        *controllers.AuthController
	UploadController      *controllers.UploadController
	TaskController        *controllers.TaskController
	StreamingController   *controllers.StreamingController
	HealthCheckController *controllers.HealthCheckController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers    *ApplicationControllers
	AppConfig      *config.AppConfig
	Ctx            context.Context
	janitorModel   *models.JanitorModel
	streamingModel *models.StreamingModel
}

func (a *Application) Boot() {
	a.streamingModel.Warmup(a.Ctx)
	if err := a.streamingModel.Start(); err != nil {
		a.AppConfig.Logger.WithError(err).Fatalln("Failed to start streaming pipeline")
	}
	go a.janitorModel.StartJanitor()
}

func (a *Application) Shutdown() {
	a.janitorModel.Stop()
	if err := a.streamingModel.Stop(); err != nil {
		a.AppConfig.Logger.WithError(err).Errorln("failed to stop streaming pipeline")
	}
}
