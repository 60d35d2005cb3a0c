//go:build integration

// Package integration runs the odorscape command tree against real object
// storage and cache containers.  Tests require Docker and are gated behind
// the "integration" build tag.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/odorscape/internal/interfaces/cli"
)

const (
	minioUser     = "odorscape"
	minioPassword = "odorscape-secret"
	bucket        = "odor-data"
)

// ─────────────────────────────────────────────────────────────────────────────
// Containers
// ─────────────────────────────────────────────────────────────────────────────

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// startRedis launches a Redis 7 container and returns its address.
func startRedis(t *testing.T) string {
	return startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}, "6379")
}

// startMinIO launches a MinIO server, creates the test bucket and returns the
// endpoint with a connected client.
func startMinIO(t *testing.T) (string, *miniogo.Client) {
	t.Helper()
	endpoint := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}, "9000")

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds: credentials.NewStaticV4(minioUser, minioPassword, ""),
	})
	require.NoError(t, err)
	require.NoError(t, client.MakeBucket(context.Background(), bucket, miniogo.MakeBucketOptions{}))
	return endpoint, client
}

func putObject(t *testing.T, client *miniogo.Client, name, body string) string {
	t.Helper()
	_, err := client.PutObject(context.Background(), bucket, name, strings.NewReader(body), int64(len(body)),
		miniogo.PutObjectOptions{ContentType: "text/csv"})
	require.NoError(t, err)
	return "s3://" + bucket + "/" + name
}

// ─────────────────────────────────────────────────────────────────────────────
// CLI
// ─────────────────────────────────────────────────────────────────────────────

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "odorscape.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
