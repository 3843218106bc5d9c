package constants

const (
	APP_NAME = "ethlight"
	// prefix used to read config parameters from environment variables
	ENV_PREFIX = "ETHLIGHT"
	// config file name
	CONFIG_FILE_NAME = "config.toml"
	// config file type
	CONFIG_FILE_TYPE = "toml"
	// sub directory of the data dir holding the header database
	DATABASE_DIR_NAME = "lightchain"
	// sub directory of the data dir holding the ethash verification caches
	ETHASH_DIR_NAME = "ethash"
)
