//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/google/wire"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/controllers"
	"github.com/sensestream/sensestream-server/pkg/inference"
	"github.com/sensestream/sensestream-server/pkg/models"
	dbservice "github.com/sensestream/sensestream-server/pkg/services/db"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	dbservice.New,
	redisservice.New,
	inference.NewProvider,
	inference.NewEngine,
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewAuthModel,
	models.NewUploadModel,
	models.NewTaskModel,
	models.NewSegmentModel,
	models.NewStreamingModel,
	models.NewJanitorModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewAuthController,
	controllers.NewUploadController,
	controllers.NewTaskController,
	controllers.NewStreamingController,
	controllers.NewHealthCheckController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		// Provide the whole AppConfig, and also specific fields needed by constructors.
		wire.FieldsOf(new(*config.AppConfig), "DB", "RDS", "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil // This return value is ignored.
}
