package sami

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Values under this block are protocol constants. Changing them breaks
// compatibility with other sami nodes.
const ID_LENGTH int = 16
const RSA_KEYS_LENGTH int = 4096
const CONTACT_DELIMITER string = ":"

const QUEUE_CAPACITY int = 10000

// Configs carries the user-settable knobs, resolved once at startup.
// Precedence: env var (SAMI_ prefix) > config file > default.
type Configs struct {
	PollInterval             time.Duration
	PrivateKeyWaitInterval   time.Duration
	RSAKeysLength            int
	ContactDelimiter         string
	BroadcastSchedule        time.Duration
	ContactDiscoverySchedule time.Duration
	NodesDiscoverySchedule   time.Duration
	MaxRequestLifespan       time.Duration
	HTTPServerListenPort     string
	DatabasesDirectory       string
	PrivateKeyFile           string
	OwnAddress               string
}

func initViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("POLL_INTERVAL_SECONDS", 2)
	v.SetDefault("PRIVATE_KEY_WAIT_INTERVAL_SECONDS", 2)
	v.SetDefault("RSA_KEYS_LENGTH", RSA_KEYS_LENGTH)
	v.SetDefault("CONTACT_DELIMITER", CONTACT_DELIMITER)
	v.SetDefault("BROADCAST_SCHEDULE_SECONDS", 60*10)
	v.SetDefault("CONTACT_DISCOVERY_SCHEDULE_SECONDS", 60*15)
	v.SetDefault("NODES_DISCOVERY_SCHEDULE_SECONDS", 60*30)
	v.SetDefault("MAX_REQUEST_LIFESPAN_SECONDS", 60*60*24*31*2)
	v.SetDefault("HTTP_SERVER_LISTEN_PORT", ":3000")
	v.SetDefault("DATABASES_DIRECTORY", "./db")
	v.SetDefault("PRIVATE_KEY_FILE", "")
	v.SetDefault("OWN_ADDRESS", "127.0.0.1:62355")

	v.SetEnvPrefix("SAMI")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

func initConfigs(v *viper.Viper) Configs {
	return Configs{
		PollInterval:             time.Duration(v.GetInt("POLL_INTERVAL_SECONDS")) * time.Second,
		PrivateKeyWaitInterval:   time.Duration(v.GetInt("PRIVATE_KEY_WAIT_INTERVAL_SECONDS")) * time.Second,
		RSAKeysLength:            v.GetInt("RSA_KEYS_LENGTH"),
		ContactDelimiter:         v.GetString("CONTACT_DELIMITER"),
		BroadcastSchedule:        time.Duration(v.GetInt("BROADCAST_SCHEDULE_SECONDS")) * time.Second,
		ContactDiscoverySchedule: time.Duration(v.GetInt("CONTACT_DISCOVERY_SCHEDULE_SECONDS")) * time.Second,
		NodesDiscoverySchedule:   time.Duration(v.GetInt("NODES_DISCOVERY_SCHEDULE_SECONDS")) * time.Second,
		MaxRequestLifespan:       time.Duration(v.GetInt("MAX_REQUEST_LIFESPAN_SECONDS")) * time.Second,
		HTTPServerListenPort:     v.GetString("HTTP_SERVER_LISTEN_PORT"),
		DatabasesDirectory:       v.GetString("DATABASES_DIRECTORY"),
		PrivateKeyFile:           v.GetString("PRIVATE_KEY_FILE"),
		OwnAddress:               v.GetString("OWN_ADDRESS"),
	}
}
