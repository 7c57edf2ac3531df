package devnet

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	// ContainerSpec describes the anvil container to run.
	ContainerSpec struct {
		Name     string
		Image    string
		HostPort int
		ChainID  int
	}

	// DockerClient talks to the local docker daemon.
	DockerClient struct {
		cli    *client.Client
		logger *slog.Logger
	}
)

func NewDockerClient() (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	return &DockerClient{cli: cli, logger: logger.Named("docker_client")}, nil
}

func (c *DockerClient) Close() error {
	return c.cli.Close()
}

func (c *DockerClient) ImageExists(ctx context.Context, imageName string) (bool, error) {
	_, err := c.cli.ImageInspect(ctx, imageName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (c *DockerClient) PullImage(ctx context.Context, imageName string) error {
	c.logger.With("image", imageName).Info("pulling docker image")

	resp, err := c.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer resp.Close()

	scanner := bufio.NewScanner(resp)
	var pullError error
	for scanner.Scan() {
		line := scanner.Text()
		c.logger.Debug(line)

		var msg struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err == nil && msg.Error != "" {
			pullError = fmt.Errorf("pull failed: %s", msg.Error)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading pull output: %w", err)
	}

	return pullError
}

// Start creates and starts the container, returning its ID.
func (c *DockerClient) Start(ctx context.Context, spec ContainerSpec) (string, error) {
	config, hostConfig, err := containerConfig(spec)
	if err != nil {
		return "", err
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = c.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

// Remove force-removes the named container. A missing container is not an
// error.
func (c *DockerClient) Remove(ctx context.Context, name string) (bool, error) {
	err := c.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove container %s: %w", name, err)
	}

	return true, nil
}

// Running reports whether the named container exists and is running.
func (c *DockerClient) Running(ctx context.Context, name string) (bool, error) {
	info, err := c.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	return info.State != nil && info.State.Running, nil
}

// containerConfig publishes anvil's RPC port on localhost only. The foundry
// image has a shell entrypoint, so the anvil invocation is a single string.
func containerConfig(spec ContainerSpec) (*container.Config, *container.HostConfig, error) {
	port, err := nat.NewPort("tcp", "8545")
	if err != nil {
		return nil, nil, fmt.Errorf("invalid container port: %w", err)
	}

	config := &container.Config{
		Image:        spec.Image,
		Cmd:          []string{fmt.Sprintf("anvil --host 0.0.0.0 --port 8545 --chain-id %d", spec.ChainID)},
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(spec.HostPort)}},
		},
	}

	return config, hostConfig, nil
}
