package devnet

import (
	"fmt"
	"log/slog"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/flags"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "devnet",
	Short: "Manage a disposable local anvil chain",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the devnet container and wait for its RPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting devnet command. Validating config", slog.Any("config", configs.Values.Devnet))

		if err := configs.Values.Devnet.Validate(); err != nil {
			return err
		}

		docker, err := NewDockerClient()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w", err)
		}
		defer docker.Close()

		rpcURL, err := NewService(docker, chain.WaitForRPC).Up(cmd.Context(), configs.Values.Devnet, configs.Values.Network.RPCWaitAttempts)
		if err != nil {
			return fmt.Errorf("error occurred starting devnet: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), rpcURL)
		return err
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Remove the devnet container",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Devnet.Validate(); err != nil {
			return err
		}

		docker, err := NewDockerClient()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w", err)
		}
		defer docker.Close()

		if err := NewService(docker, chain.WaitForRPC).Down(cmd.Context(), configs.Values.Devnet); err != nil {
			return fmt.Errorf("error occurred stopping devnet: %w", err)
		}

		return nil
	},
}

func init() {
	defaults := configs.MustDefaultConfig().Devnet

	flags.MustDeclare(CMD.PersistentFlags(), []flags.Def[string]{
		flags.New("image", "devnet.image", defaults.Image, "Foundry image providing anvil"),
		flags.New("container-name", "devnet.container-name", defaults.ContainerName, "Devnet container name"),
	})
	flags.MustDeclare(CMD.PersistentFlags(), []flags.Def[int]{
		flags.New("port", "devnet.port", defaults.Port, "Host port publishing the anvil RPC"),
		flags.New("chain-id", "devnet.chain-id", defaults.ChainID, "Chain ID of the devnet"),
	})
	flags.MustDeclare(CMD.PersistentFlags(), []flags.Def[bool]{
		flags.New("pull", "devnet.pull", defaults.Pull, "Pull the image even if it exists locally"),
	})

	CMD.AddCommand(upCmd)
	CMD.AddCommand(downCmd)
}
