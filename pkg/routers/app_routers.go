package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/factory"
	"github.com/sensestream/sensestream-server/version"
)

// router is a struct to hold the dependencies for setting up routes,
// allowing us to break down the monolithic New() function into smaller,
// more manageable methods.
type router struct {
	app  *fiber.App
	ctrl *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		AppName:     "SenseStream version: " + version.Version + " runtime: " + runtime.Version(),
		BodyLimit:   int(appConfig.Audio.MaxFileSizeMB+1) * 1024 * 1024,
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	// --- App Initialization & Middleware ---
	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("SenseStream")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "POST,GET,OPTIONS",
	}))

	// --- Route Registration ---
	r := &router{
		app:  app,
		ctrl: ctrl,
	}

	r.registerBaseRoutes()
	r.registerAPIRoutes()

	// --- Final Catch-All 404 Handler ---
	// This MUST be the last middleware to be registered.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/download/segment/:token", r.ctrl.AuthController.HandleDownloadSegment)
}

func (r *router) registerAPIRoutes() {
	api := r.app.Group("/api/v1", r.ctrl.AuthController.HandleAuthHeaderCheck)

	api.Post("/upload", r.ctrl.UploadController.HandleUpload)
	api.Post("/uploadFromUrl", r.ctrl.UploadController.HandleUploadFromUrl)

	api.Get("/status/:taskId", r.ctrl.TaskController.HandleTaskStatus)
	api.Get("/result/:taskId", r.ctrl.TaskController.HandleTaskResult)
	// the static segment routes must come before the :taskId capture
	api.Get("/segments/ready", r.ctrl.TaskController.HandleReadySegments)
	api.Get("/segments/:taskId", r.ctrl.TaskController.HandleTaskSegments)
	api.Post("/segments/getDownloadToken", r.ctrl.AuthController.HandleGenerateDownloadToken)

	api.Post("/tasks/fetch", r.ctrl.TaskController.HandleFetchTasks)
	api.Post("/tasks/delete", r.ctrl.TaskController.HandleDeleteTask)

	streaming := api.Group("/streaming")
	streaming.Post("/start", r.ctrl.StreamingController.HandleStart)
	streaming.Post("/stop", r.ctrl.StreamingController.HandleStop)
	streaming.Get("/status", r.ctrl.StreamingController.HandleStatus)
	streaming.Get("/stats", r.ctrl.StreamingController.HandleStats)
	streaming.Post("/submit/:taskId", r.ctrl.StreamingController.HandleSubmitTask)
	streaming.Get("/firstSegment/:taskId", r.ctrl.StreamingController.HandleFirstSegmentResult)
	streaming.Get("/segments/:segmentId", r.ctrl.StreamingController.HandleSegmentResult)
	streaming.Get("/audio/:taskId/segments", r.ctrl.StreamingController.HandleTaskResults)
	streaming.Get("/performance", r.ctrl.StreamingController.HandlePerformance)
	streaming.Post("/cleanup", r.ctrl.StreamingController.HandleCleanup)
}
