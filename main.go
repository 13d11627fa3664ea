package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sensestream/sensestream-server/helpers"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/factory"
	"github.com/sensestream/sensestream-server/pkg/logging"
	"github.com/sensestream/sensestream-server/pkg/routers"
	"github.com/sensestream/sensestream-server/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "sensestream-server",
		Usage:       "Streaming speech recognition service",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to setup logger")
	}
	appCnf.Logger = logger

	// set this config for global usage
	if _, err := config.New(appCnf); err != nil {
		logger.Fatalln(err)
	}

	// now prepare our server
	err = helpers.PrepareServer(config.GetConfig())
	if err != nil {
		logger.Fatalln(err)
	}

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	// boot up some services
	appFactory.Boot()

	// defer close connections
	defer helpers.HandleCloseConnections()

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.Infoln("exit requested, shutting down", "signal", sig)
		appFactory.Shutdown()
		_ = rt.Shutdown()
	}()

	err = rt.Listen(fmt.Sprintf("%s:%d", appCnf.Server.Host, appCnf.Server.Port))
	if err != nil {
		logger.Fatalln(err)
	}
	return nil
}
