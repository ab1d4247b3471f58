package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mdouchement/herkulexd/cmd/herkulexctl/monitor"
	"github.com/mdouchement/herkulexd/cmd/herkulexctl/pose"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	client := &http.Client{}
	var socket string

	cmd := &cobra.Command{
		Use:     "herkulexctl",
		Short:   "A ctl used to interact with herkulexd",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			if socket == "" {
				var err error
				socket, err = findSocket()
				if err != nil {
					return err
				}
			}

			client.Transport = &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socket)
				},
				DisableCompression: false,
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&socket, "socket", "s", "", "herkulexd socket path")
	cmd.AddCommand(monitor.Command(client))
	cmd.AddCommand(pose.Command(client))
	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "List the servos responding to herkulexd",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return scan(client)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for herkulexctl",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func scan(client *http.Client) error {
	resp, err := client.Get("http://unix/scan")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scan: %s", resp.Status)
	}

	var ids []int
	if err = json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d servo(s) found\n", len(ids))
	return nil
}

//
//
//

type config struct {
	Socket string `yaml:"socket"`
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func findSocket() (string, error) {
	socket := "/run/herkulexd/herkulexd.sock"
	if exists(socket) {
		return socket, nil
	}

	u, err := user.Current()
	if err != nil {
		return "", err
	}

	var cfg config
	cpath := filepath.Join(u.HomeDir, ".config", "herkulexctl", "herkulexctl.yml") // Does not follow XDG..
	p, err := os.ReadFile(cpath)
	switch {
	case err == nil:
		err = yaml.Unmarshal(p, &cfg)
		if err != nil {
			return "", err
		}

		if exists(cfg.Socket) {
			return cfg.Socket, nil
		}

		fmt.Println("Invalid socket path:", cfg.Socket)
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	fmt.Print("Enter a socket path: ")
	r := bufio.NewReader(os.Stdin)
	socket, err = r.ReadString('\n')
	if err != nil {
		return "", err
	}

	socket = strings.TrimSpace(socket)

	if err = os.MkdirAll(filepath.Dir(cpath), 0o755); err != nil {
		return "", err
	}

	cfg.Socket = socket
	p, err = yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	return socket, os.WriteFile(cpath, p, 0o600)
}
