package helpers

import (
	"context"
	"os"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/factory"
	"gopkg.in/yaml.v3"
)

// PrepareServer establishes the backing connections and stores them on
// the config.
func PrepareServer(appCnf *config.AppConfig) error {
	ctx := context.Background()

	if err := factory.NewDatabaseConnection(ctx, appCnf); err != nil {
		return err
	}
	if err := factory.NewRedisConnection(ctx, appCnf); err != nil {
		return err
	}
	if err := factory.NewNatsConnection(appCnf); err != nil {
		return err
	}

	return nil
}

func ReadYamlConfigFile(filename string) (*config.AppConfig, error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	appCnf := new(config.AppConfig)
	err = yaml.Unmarshal(yamlFile, &appCnf)
	if err != nil {
		return nil, err
	}

	// get current working dir
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// set the root path
	appCnf.RootWorkingDir = wd

	return appCnf, err
}
