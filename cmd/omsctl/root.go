// Root command, flags and configuration loading for omsctl.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	omsbridge "github.com/opengovern/oms-bridge"
	"github.com/opengovern/oms-bridge/adapters"
	"github.com/opengovern/oms-bridge/cache"
)

const envPrefix = "OMS"

// app carries what the commands share once PersistentPreRunE has run.
type app struct {
	v          *viper.Viper
	configFile string
	output     string

	cfg     *omsbridge.Config
	log     *logrus.Logger
	session *omsbridge.Session
	bridge  *omsbridge.OMSBridge
	closer  func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "omsctl",
		Short: "omsctl talks to an OFBiz or Moqui based OMS",
		Long: `omsctl runs the bridge's logical operations against one OMS instance.

Configuration comes from flags, OMS_* environment variables, a .env file in
the working directory and an optional YAML config file, in that order of
precedence.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.close() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")
	flags.String("oms", "", "OMS instance name or URL")
	flags.String("token", "", "bearer token")
	flags.String("system-type", "", "backend: OFBIZ (default) or MOQUI")
	flags.String("cache-max-age", "", "response cache max age, seconds or duration")
	flags.String("timeout", "", "HTTP timeout, seconds or duration")
	flags.String("redis-addr", "", "share the response cache through this Redis server")
	flags.Bool("debug", false, "debug logging")

	for key, flag := range map[string]string{
		omsbridge.KeyInstance:    "oms",
		omsbridge.KeyToken:       "token",
		omsbridge.KeySystemType:  "system-type",
		omsbridge.KeyCacheMaxAge: "cache-max-age",
		omsbridge.KeyTimeout:     "timeout",
		omsbridge.KeyRedisAddr:   "redis-addr",
		omsbridge.KeyDebug:       "debug",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.profileCmd(),
		a.logoutCmd(),
		a.timezonesCmd(),
		a.facilitiesCmd(),
		a.storesCmd(),
		a.prefCmd(),
		a.identificationCmd(),
		a.notificationsCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := omsbridge.ConfigFromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log.SetOutput(cmd.ErrOrStderr())
	if cfg.Debug {
		a.log.SetLevel(logrus.DebugLevel)
	}

	a.session = omsbridge.NewSession(a.v.GetString(omsbridge.KeyInstance))
	a.session.SetToken(a.v.GetString(omsbridge.KeyToken), time.Time{})
	a.session.OnExpiry(func(kind omsbridge.BackendKind) {
		a.log.WithField("backend", kind.String()).Warn("session expired, log in again")
	})

	var store cache.Store
	if cfg.RedisAddr != "" && cfg.CacheMaxAge > 0 {
		rs, err := cache.DialRedis(cmd.Context(), cfg.RedisAddr)
		if err != nil {
			return err
		}
		store = rs
		a.closer = rs.Close
	}

	t := omsbridge.NewTransportFromConfig(cfg, a.session, store, a.log)
	a.bridge = adapters.NewBridge(cfg.Backend, t)
	a.bridge.SetLogger(a.log)
	return nil
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}
