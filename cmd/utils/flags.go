package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dominant-strategies/eth-light-client/common/constants"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var GlobalFlags = []Flag{
	ConfigDirFlag,
	DataDirFlag,
	LogLevelFlag,
	SaveConfigFlag,
	NetworkFlag,
	ConfirmationsFlag,
	AccountFlag,
	RootAccountsFlag,
}

var DatabaseFlags = []Flag{
	DBEngineFlag,
	DBCacheFlag,
	DBHandlesFlag,
}

var EthashFlags = []Flag{
	EthashCacheDirFlag,
	EthashCachesInMemFlag,
	EthashCachesOnDiskFlag,
	EthashLockMmapFlag,
}

var MetricsFlags = []Flag{
	MetricsEnabledFlag,
	MetricsAddrFlag,
}

var (
	// ****************************************
	// **                                    **
	// **         GLOBAL FLAGS               **
	// **                                    **
	// ****************************************
	ConfigDirFlag = Flag{
		Name:         "config-dir",
		Abbreviation: "c",
		Value:        xdg.ConfigHome + "/" + constants.APP_NAME + "/",
		Usage:        "config directory" + generateEnvDoc("config-dir"),
	}

	DataDirFlag = Flag{
		Name:         "data-dir",
		Abbreviation: "d",
		Value:        xdg.DataHome + "/" + constants.APP_NAME + "/",
		Usage:        "data directory" + generateEnvDoc("data-dir"),
	}

	LogLevelFlag = Flag{
		Name:         "log-level",
		Abbreviation: "l",
		Value:        "info",
		Usage:        "log level (trace, debug, info, warn, error, fatal, panic)" + generateEnvDoc("log-level"),
	}

	SaveConfigFlag = Flag{
		Name:         "save-config",
		Abbreviation: "S",
		Value:        false,
		Usage:        "save/update config file with current config parameters" + generateEnvDoc("save-config"),
	}

	NetworkFlag = Flag{
		Name:         "network",
		Abbreviation: "n",
		Value:        "mainnet",
		Usage:        "followed network (mainnet, ropsten, test)" + generateEnvDoc("network"),
	}

	ConfirmationsFlag = Flag{
		Name:  "confirmations",
		Value: uint64(30),
		Usage: "blocks between an appended header and the authority best number" + generateEnvDoc("confirmations"),
	}

	AccountFlag = Flag{
		Name:         "account",
		Abbreviation: "a",
		Value:        "",
		Usage:        "account signing the dispatched call" + generateEnvDoc("account"),
	}

	RootAccountsFlag = Flag{
		Name:  "root-accounts",
		Value: []string{},
		Usage: "accounts allowed to run privileged calls. Syntax: <account1>,<account2>,..." + generateEnvDoc("root-accounts"),
	}

	// ****************************************
	// **                                    **
	// **         DATABASE FLAGS             **
	// **                                    **
	// ****************************************
	DBEngineFlag = Flag{
		Name:  "db.engine",
		Value: "leveldb",
		Usage: "header database engine (leveldb, pebble, badger, memory)" + generateEnvDoc("db.engine"),
	}

	DBCacheFlag = Flag{
		Name:  "db.cache",
		Value: 64,
		Usage: "megabytes of memory allocated to database caching" + generateEnvDoc("db.cache"),
	}

	DBHandlesFlag = Flag{
		Name:  "db.handles",
		Value: 64,
		Usage: "number of file handles allocated to the database" + generateEnvDoc("db.handles"),
	}

	// ****************************************
	// **                                    **
	// **         ETHASH FLAGS               **
	// **                                    **
	// ****************************************
	EthashCacheDirFlag = Flag{
		Name:  "ethash.cachedir",
		Value: "",
		Usage: "directory to store the ethash verification caches (default = inside the data dir)" + generateEnvDoc("ethash.cachedir"),
	}

	EthashCachesInMemFlag = Flag{
		Name:  "ethash.caches-in-mem",
		Value: 2,
		Usage: "number of recent ethash caches to keep in memory (16MB each)" + generateEnvDoc("ethash.caches-in-mem"),
	}

	EthashCachesOnDiskFlag = Flag{
		Name:  "ethash.caches-on-disk",
		Value: 3,
		Usage: "number of recent ethash caches to keep on disk (16MB each)" + generateEnvDoc("ethash.caches-on-disk"),
	}

	EthashLockMmapFlag = Flag{
		Name:  "ethash.lock-mmap",
		Value: false,
		Usage: "lock memory maps of recent ethash caches" + generateEnvDoc("ethash.lock-mmap"),
	}

	// ****************************************
	// **                                    **
	// **         METRICS FLAGS              **
	// **                                    **
	// ****************************************
	MetricsEnabledFlag = Flag{
		Name:  "metrics.enabled",
		Value: false,
		Usage: "enable metrics collection and reporting" + generateEnvDoc("metrics.enabled"),
	}

	MetricsAddrFlag = Flag{
		Name:  "metrics.addr",
		Value: "127.0.0.1:2112",
		Usage: "listen address of the metrics server" + generateEnvDoc("metrics.addr"),
	}
)

func CreateAndBindFlag(flag Flag, cmd *cobra.Command) {
	switch val := flag.Value.(type) {
	case string:
		cmd.PersistentFlags().StringP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case bool:
		cmd.PersistentFlags().BoolP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case []string:
		cmd.PersistentFlags().StringSliceP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case time.Duration:
		cmd.PersistentFlags().DurationP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case int:
		cmd.PersistentFlags().IntP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case int64:
		cmd.PersistentFlags().Int64P(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case uint64:
		cmd.PersistentFlags().Uint64P(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	default:
		log.Global.Error("Flag type not supported: " + flag.GetName() + ", " + fmt.Sprintf("%T", val))
	}
	viper.BindPFlag(flag.GetName(), cmd.PersistentFlags().Lookup(flag.GetName()))
}

// helper function that given a cobra flag name, returns the corresponding
// help legend for the equivalent environment variable
func generateEnvDoc(flag string) string {
	envVar := constants.ENV_PREFIX + "_" + envKeyReplacer.Replace(strings.ToUpper(flag))
	return fmt.Sprintf(" [%s]", envVar)
}
