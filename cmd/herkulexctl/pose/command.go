package pose

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func Command(client *http.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pose [name]",
		Short: "Play a configured pose, list the poses when no name is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return list(client)
			}

			resp, err := client.Post("http://unix/poses/"+url.PathEscape(args[0]), "", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
				return fmt.Errorf("pose %s: %s: %s", args[0], resp.Status, string(b))
			}

			fmt.Println("Playing", args[0])
			return nil
		},
	}

	return cmd
}

func list(client *http.Client) error {
	resp, err := client.Get("http://unix/poses")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("poses: %s", resp.Status)
	}

	var names []string
	if err = json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
