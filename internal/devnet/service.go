package devnet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	docker interface {
		ImageExists(ctx context.Context, imageName string) (bool, error)
		PullImage(ctx context.Context, imageName string) error
		Start(ctx context.Context, spec ContainerSpec) (string, error)
		Remove(ctx context.Context, name string) (bool, error)
		Running(ctx context.Context, name string) (bool, error)
	}

	// rpcWaiter blocks until the node answers on url.
	rpcWaiter func(ctx context.Context, url string, attempts int) error

	// Service runs a disposable anvil chain for local deployments.
	Service struct {
		docker  docker
		waitRPC rpcWaiter
		logger  *slog.Logger
	}
)

func NewService(docker docker, waitRPC rpcWaiter) *Service {
	return &Service{
		docker:  docker,
		waitRPC: waitRPC,
		logger:  logger.Named("devnet"),
	}
}

// Up starts the devnet container unless it is already running and returns
// its RPC URL once the node answers.
func (s *Service) Up(ctx context.Context, cfg configs.Devnet, waitAttempts int) (string, error) {
	log := s.logger.With("container", cfg.ContainerName).With("image", cfg.Image)
	rpcURL := RPCURL(cfg.Port)

	running, err := s.docker.Running(ctx, cfg.ContainerName)
	if err != nil {
		return "", err
	}

	if running {
		log.Info("devnet container is already running")
	} else {
		pull := cfg.Pull
		if !pull {
			exists, err := s.docker.ImageExists(ctx, cfg.Image)
			if err != nil {
				return "", fmt.Errorf("failed to inspect image %s: %w", cfg.Image, err)
			}
			pull = !exists
		}
		if pull {
			if err := s.docker.PullImage(ctx, cfg.Image); err != nil {
				return "", err
			}
		}

		// A stopped container with the same name would make create fail.
		if _, err := s.docker.Remove(ctx, cfg.ContainerName); err != nil {
			return "", err
		}

		id, err := s.docker.Start(ctx, ContainerSpec{
			Name:     cfg.ContainerName,
			Image:    cfg.Image,
			HostPort: cfg.Port,
			ChainID:  cfg.ChainID,
		})
		if err != nil {
			return "", err
		}
		log.With("id", id).Info("devnet container started")
	}

	if err := s.waitRPC(ctx, rpcURL, waitAttempts); err != nil {
		return "", fmt.Errorf("devnet RPC did not come up: %w", err)
	}

	log.With("rpc_url", rpcURL).Info("devnet is ready")

	return rpcURL, nil
}

// Down removes the devnet container and everything the chain held.
func (s *Service) Down(ctx context.Context, cfg configs.Devnet) error {
	removed, err := s.docker.Remove(ctx, cfg.ContainerName)
	if err != nil {
		return err
	}

	if !removed {
		s.logger.With("container", cfg.ContainerName).Info("devnet container not found, nothing to remove")
		return nil
	}

	s.logger.With("container", cfg.ContainerName).Info("devnet container removed")
	return nil
}

func RPCURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
