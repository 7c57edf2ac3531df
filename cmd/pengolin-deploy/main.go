package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment"
	"github.com/pengolincoin/pengolin-deploy/internal/devnet"
	"github.com/pengolincoin/pengolin-deploy/internal/flags"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
	"github.com/pengolincoin/pengolin-deploy/internal/smoke"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "pengolin-deploy"

var logLevel string

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Deploy and smoke test the Pengolin contracts",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.Initialize(level)

		if err := configs.SetDefaults(viper.GetViper()); err != nil {
			return err
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(execPath))
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// A config file is optional; embedded defaults and flags cover every key.
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
			slog.Debug("no config file found, will rely on flags and defaults")
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		slog.With("rpc_url", configs.Values.Network.RPCURL).
			With("accounts", len(configs.Values.Accounts.PrivateKeys)).
			Debug("configuration loaded")

		return nil
	},
}

func init() {
	defaults := configs.MustDefaultConfig()

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	flags.MustDeclare(rootCmd.PersistentFlags(), []flags.Def[string]{
		flags.New("rpc-url", "network.rpc-url", defaults.Network.RPCURL, "JSON-RPC endpoint of the target chain"),
		flags.New("artifacts-path", "contracts.artifacts-path", defaults.Contracts.ArtifactsPath, "contracts.json bundle or Hardhat artifacts directory"),
		flags.New("output-dir", "output.dir", defaults.Output.Dir, "Directory receiving deployments.json and output.yaml"),
	})
	flags.MustDeclare(rootCmd.PersistentFlags(), []flags.Def[int]{
		flags.New("rpc-wait-attempts", "network.rpc-wait-attempts", defaults.Network.RPCWaitAttempts, "Seconds to wait for the RPC endpoint to answer"),
	})

	rootCmd.AddCommand(deployment.CMD)
	rootCmd.AddCommand(deployment.CompileCMD)
	rootCmd.AddCommand(smoke.CMD)
	rootCmd.AddCommand(devnet.CMD)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
