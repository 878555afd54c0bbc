package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"

	"github.com/benchkit/sqlbench/database"
)

const mysqlPort nat.Port = "3306/tcp"

// Docker provisions a disposable MySQL container through the local Docker
// daemon and removes it on Stop. The container publishes its port on a
// random loopback port so parallel invocations don't collide.
type Docker struct {
	Image    string
	Database string
	User     string
	Password string
	Log      logrus.FieldLogger

	cli         *client.Client
	containerID string
	db          *sql.DB
}

func (d *Docker) Start(ctx context.Context) (*sql.DB, error) {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	d.cli = cli

	pull, err := cli.ImagePull(ctx, d.Image, image.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("pull %s: %w", d.Image, err)
	}

	// the pull stream must be drained before the image is usable
	_, _ = io.Copy(io.Discard, pull)
	_ = pull.Close()

	cfg := &container.Config{
		Image: d.Image,
		Env: []string{
			"MYSQL_DATABASE=" + d.Database,
			"MYSQL_USER=" + d.User,
			"MYSQL_PASSWORD=" + d.Password,
			"MYSQL_ROOT_PASSWORD=" + d.Password,
		},
		Cmd: []string{
			"--character-set-server=utf8mb4",
			"--innodb-buffer-pool-size=256M",
		},
		ExposedPorts: nat.PortSet{mysqlPort: struct{}{}},
	}

	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			mysqlPort: []nat.PortBinding{{HostIP: "127.0.0.1"}},
		},
	}

	created, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	d.containerID = created.ID

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	info, err := cli.ContainerInspect(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect container: %w", err)
	}

	bindings := info.NetworkSettings.Ports[mysqlPort]
	if len(bindings) == 0 {
		return nil, errors.New("mysql port not published")
	}

	port, err := strconv.Atoi(bindings[0].HostPort)
	if err != nil {
		return nil, fmt.Errorf("invalid host port %q: %w", bindings[0].HostPort, err)
	}

	log.WithFields(logrus.Fields{
		"image":     d.Image,
		"container": created.ID[:12],
		"port":      port,
	}).Info("mysql container started")

	db, err := database.Open(ctx, database.Config{
		Host:     "127.0.0.1",
		Port:     port,
		User:     d.User,
		Password: d.Password,
		Database: d.Database,
	})
	if err != nil {
		return nil, err
	}

	d.db = db

	return db, nil
}

func (d *Docker) Stop(ctx context.Context) error {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.cli == nil {
		return nil
	}

	defer func() { _ = d.cli.Close() }()

	if d.containerID == "" {
		return nil
	}

	err := d.cli.ContainerRemove(ctx, d.containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil {
		return fmt.Errorf("remove container: %w", err)
	}

	return nil
}
