package config

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/spf13/viper"
)

type Config struct {
	RpcUrl      string
	Network     common.Network
	DatabaseUrl string
	ApiPort     int
	StartHeight int64
	EnableApi   bool
	Debug       bool

	Bridge Bridge
}

type Bridge struct {
	BurnAddress      string
	CollectionFile   string
	CollectionName   string
	CollectionSymbol string
	Confirmations    int64
	MinFeeSats       int64
	OracleFeeAddress string

	DeployerMnemonic string
	ContractAddress  string
	RpcUrl           string

	WorkerInterval time.Duration
}

// Enabled reports whether the bridge subsystem is active.
func (b Bridge) Enabled() bool {
	return b.BurnAddress != "" && b.CollectionFile != ""
}

// WorkerEnabled reports whether the attestation worker is active. It
// additionally requires the deployer key and the contract address.
func (b Bridge) WorkerEnabled() bool {
	return b.Enabled() && b.DeployerMnemonic != "" && b.ContractAddress != ""
}

var (
	configOnce sync.Once
	config     Config
	configErr  error
)

// Load reads the configuration from environment variables once per process.
func Load() (Config, error) {
	configOnce.Do(func() {
		v := viper.New()
		v.AutomaticEnv()

		v.SetDefault("NETWORK", common.NetworkMainnet.String())
		v.SetDefault("API_PORT", 3002)
		v.SetDefault("START_HEIGHT", 0)
		v.SetDefault("ENABLE_API", true)
		v.SetDefault("BRIDGE_CONFIRMATIONS", 6)
		v.SetDefault("BRIDGE_MIN_FEE_SATS", 0)
		v.SetDefault("WORKER_INTERVAL_SECONDS", 30)
		v.SetDefault("DEBUG", false)

		config = Config{
			RpcUrl:      v.GetString("RPC_URL"),
			Network:     common.Network(v.GetString("NETWORK")),
			DatabaseUrl: v.GetString("DATABASE_URL"),
			ApiPort:     v.GetInt("API_PORT"),
			StartHeight: v.GetInt64("START_HEIGHT"),
			EnableApi:   v.GetBool("ENABLE_API"),
			Debug:       v.GetBool("DEBUG"),
			Bridge: Bridge{
				BurnAddress:      v.GetString("BRIDGE_BURN_ADDRESS"),
				CollectionFile:   v.GetString("BRIDGE_COLLECTION_FILE"),
				CollectionName:   v.GetString("BRIDGE_COLLECTION_NAME"),
				CollectionSymbol: v.GetString("BRIDGE_COLLECTION_SYMBOL"),
				Confirmations:    v.GetInt64("BRIDGE_CONFIRMATIONS"),
				MinFeeSats:       v.GetInt64("BRIDGE_MIN_FEE_SATS"),
				OracleFeeAddress: v.GetString("ORACLE_FEE_ADDRESS"),
				DeployerMnemonic: v.GetString("DEPLOYER_MNEMONIC"),
				ContractAddress:  v.GetString("BRIDGE_CONTRACT_ADDRESS"),
				RpcUrl:           v.GetString("BRIDGE_RPC_URL"),
				WorkerInterval:   time.Duration(v.GetInt64("WORKER_INTERVAL_SECONDS")) * time.Second,
			},
		}
		configErr = config.Validate()
	})
	return config, configErr
}

// Validate checks boot-time requirements. A failure here is fatal.
func (c Config) Validate() error {
	var errList []error
	if c.RpcUrl == "" {
		errList = append(errList, errors.New("RPC_URL is required"))
	}
	if c.DatabaseUrl == "" {
		errList = append(errList, errors.New("DATABASE_URL is required"))
	}
	if !c.Network.IsSupported() {
		errList = append(errList, errors.Errorf("NETWORK %q is not supported", c.Network))
	}
	if c.StartHeight < 0 {
		errList = append(errList, errors.New("START_HEIGHT must be non-negative"))
	}
	if c.ApiPort <= 0 || c.ApiPort > 65535 {
		errList = append(errList, errors.New("API_PORT must be a valid port"))
	}
	if c.Bridge.Enabled() {
		if c.Bridge.Confirmations < 1 {
			errList = append(errList, errors.New("BRIDGE_CONFIRMATIONS must be at least 1"))
		}
		if c.Bridge.MinFeeSats < 0 {
			errList = append(errList, errors.New("BRIDGE_MIN_FEE_SATS must be non-negative"))
		}
		if c.Bridge.MinFeeSats > 0 && c.Bridge.OracleFeeAddress == "" {
			errList = append(errList, errors.New("ORACLE_FEE_ADDRESS is required when BRIDGE_MIN_FEE_SATS is set"))
		}
	}
	if c.Bridge.WorkerEnabled() && c.Bridge.RpcUrl == "" && c.RpcUrl == "" {
		errList = append(errList, errors.New("BRIDGE_RPC_URL is required for the attestation worker"))
	}
	return errors.Join(errList...)
}

// BridgeRpcUrl returns the contract transport endpoint, falling back to the
// main RPC url.
func (c Config) BridgeRpcUrl() string {
	if c.Bridge.RpcUrl != "" {
		return c.Bridge.RpcUrl
	}
	return c.RpcUrl
}
