package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/dominant-strategies/eth-light-client/common/constants"
	"github.com/dominant-strategies/eth-light-client/log"
)

// envKeyReplacer maps config keys to environment variable names.
var envKeyReplacer = strings.NewReplacer("-", "_", ".", "_")

// InitConfig initializes the viper config instance ensuring that environment variables
// take precedence over config file parameters.
// Environment variables should be prefixed with the application name (e.g. ETHLIGHT_LOG_LEVEL).
// It panics if an error occurs while reading the config file.
func InitConfig() {
	// read in config file and merge with defaults
	log.Global.Infof("Loading config from file: %s", viper.ConfigFileUsed())
	err := viper.ReadInConfig()
	if err != nil {
		// if error is type ConfigFileNotFoundError or fs.PathError, ignore error
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) || errors.As(err, &viper.ConfigFileNotFoundError{}) {
			log.Global.Warnf("Config file not found: %s", viper.ConfigFileUsed())
		} else {
			log.Global.Errorf("Error reading config file: %s", err)
			// config file was found but another error was produced. Cannot continue
			panic(err)
		}
	}

	log.Global.Infof("Loading config from environment variables with prefix: '%s_'", constants.ENV_PREFIX)
	viper.SetEnvPrefix(constants.ENV_PREFIX)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

// SaveConfig writes the current settings to the config file in use, creating
// the file and its directory if needed.
func SaveConfig() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		return errors.New("no config file in use")
	}
	return writeConfigFile(path, viper.AllSettings())
}

// WriteDefaultConfigFile writes a config file holding the default value of
// every given flag. Existing files are left untouched.
func WriteDefaultConfigFile(configDir string, flagGroups ...[]Flag) (string, error) {
	path := filepath.Join(configDir, constants.CONFIG_FILE_NAME)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file %s already exists", path)
	}
	settings := make(map[string]interface{})
	for _, group := range flagGroups {
		for _, flag := range group {
			setNested(settings, flag.GetName(), flag.GetValue())
		}
	}
	return path, writeConfigFile(path, settings)
}

// setNested stores value under a dotted key the way viper nests it.
func setNested(settings map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		sub, ok := settings[part].(map[string]interface{})
		if !ok {
			sub = make(map[string]interface{})
			settings[part] = sub
		}
		settings = sub
	}
	settings[parts[len(parts)-1]] = value
}

func writeConfigFile(path string, settings map[string]interface{}) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
