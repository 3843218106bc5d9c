package utils

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dominant-strategies/eth-light-client/auth"
	"github.com/dominant-strategies/eth-light-client/common/constants"
	"github.com/dominant-strategies/eth-light-client/consensus/ethash"
	"github.com/dominant-strategies/eth-light-client/core"
	"github.com/dominant-strategies/eth-light-client/core/rawdb"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/lightclient"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/params"
)

// NetworkConfig reads the network selection from the config.
func NetworkConfig() (params.NetworkConfig, error) {
	network, err := params.ParseNetwork(viper.GetString(NetworkFlag.Name))
	if err != nil {
		return params.NetworkConfig{}, err
	}
	return params.NetworkConfig{
		Network:       network,
		Confirmations: viper.GetUint64(ConfirmationsFlag.Name),
	}, nil
}

// OpenDatabase opens the configured header database below the data dir.
func OpenDatabase(logger log.Logger) (ethdb.KeyValueStore, error) {
	engine, err := rawdb.ParseEngine(viper.GetString(DBEngineFlag.Name))
	if err != nil {
		return nil, err
	}
	return rawdb.Open(rawdb.OpenOptions{
		Engine:    engine,
		Directory: filepath.Join(viper.GetString(DataDirFlag.Name), constants.DATABASE_DIR_NAME),
		Cache:     viper.GetInt(DBCacheFlag.Name),
		Handles:   viper.GetInt(DBHandlesFlag.Name),
	}, logger)
}

// EthashConfig reads the ethash verifier settings. The test network runs the
// verifier in test mode.
func EthashConfig(network params.NetworkType) ethash.Config {
	cacheDir := viper.GetString(EthashCacheDirFlag.Name)
	if cacheDir == "" {
		cacheDir = filepath.Join(viper.GetString(DataDirFlag.Name), constants.ETHASH_DIR_NAME)
	}
	config := ethash.Config{
		PowMode:        ethash.ModeNormal,
		CacheDir:       cacheDir,
		CachesInMem:    viper.GetInt(EthashCachesInMemFlag.Name),
		CachesOnDisk:   viper.GetInt(EthashCachesOnDiskFlag.Name),
		CachesLockMmap: viper.GetBool(EthashLockMmapFlag.Name),
	}
	if network == params.Test {
		config.PowMode = ethash.ModeTest
	}
	return config
}

// MakeLightClient assembles a light client from the loaded config. The
// returned database must be closed by the caller.
func MakeLightClient(sink lightclient.EventSink, logger log.Logger) (*lightclient.LightClient, ethdb.KeyValueStore, error) {
	network, err := NetworkConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := OpenDatabase(logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := core.NewHeaderStore(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	engine := ethash.New(EthashConfig(network.Network), logger)
	provider := auth.NewStaticProvider(viper.GetStringSlice(RootAccountsFlag.Name)...)

	lc, err := lightclient.New(store, engine, provider, sink, network, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create light client: %w", err)
	}
	return lc, db, nil
}

// Origin returns the call origin configured by the account flag. The reserved
// account name "root" dispatches as the runtime itself.
func Origin() auth.Origin {
	account := viper.GetString(AccountFlag.Name)
	if account == string(auth.RootCaller) {
		return auth.Origin{Root: true}
	}
	return auth.Origin{Account: account}
}
