package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"entity-sync/internal/save"
	"entity-sync/internal/transport"
)

func newSendCmd(root *rootOptions) *cobra.Command {
	var (
		serviceURL string
		resource   string
		headers    map[string]string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:     "send <bundle.json|->",
		GroupID: "save",
		Short:   "Post a save bundle and report key mappings or rejections",
		Long: `Post a prepared save bundle to a service and report the outcome.

The bundle is parsed before sending, so malformed bundles never reach the
server. A validation rejection, in an error response or a successful one,
is listed entity by entity and makes the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var bundle save.Bundle
			if err := json.Unmarshal(data, &bundle); err != nil {
				return fmt.Errorf("failed to parse bundle: %w", err)
			}

			if len(bundle.Entities) == 0 {
				return errors.New("bundle has no entities")
			}

			body, err := bundle.Marshal()
			if err != nil {
				return err
			}

			opts := []transport.Option{transport.WithLogger(root.logger)}
			for k, v := range headers {
				opts = append(opts, transport.WithHeader(k, v))
			}

			client, err := transport.New(serviceURL, opts...)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()

			resp, err := client.Post(ctx, resource, body)
			if err != nil {
				var status *transport.StatusError
				if errors.As(err, &status) {
					if rej, ok := save.ParseRejection(status.Body); ok {
						printRejection(out, rej)
						return rej
					}
				}

				return err
			}

			if rej, ok := save.ParseRejection(resp); ok {
				printRejection(out, rej)
				return rej
			}

			return summarize(out, resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&serviceURL, "url", "u", "", "service base URL")
	flags.StringVarP(&resource, "resource", "r", save.DefaultResourceName, "save resource name")
	flags.StringToStringVarP(&headers, "header", "H", nil, "extra request header, key=value")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func printRejection(w io.Writer, rej *save.ServerValidationRejection) {
	fmt.Fprintf(w, "rejected: %s\n", rej.Message)

	for _, ee := range rej.EntityErrors {
		fmt.Fprintf(w, "  %s %v", ee.EntityTypeName, ee.KeyValues)

		if ee.PropertyName != "" {
			fmt.Fprintf(w, ".%s", ee.PropertyName)
		}

		fmt.Fprintf(w, ": %s\n", ee.ErrorMessage)
	}
}

func summarize(w io.Writer, resp []byte) error {
	if !gjson.ValidBytes(resp) {
		return errors.New("response is not JSON")
	}

	root := gjson.ParseBytes(resp)
	mappings := first(root, "KeyMappings", "keyMappings").Array()
	entities := first(root, "Entities", "entities").Array()

	fmt.Fprintf(w, "saved: %d entities, %d key mappings\n", len(entities), len(mappings))

	for _, m := range mappings {
		fmt.Fprintf(w, "  %s %s -> %s\n",
			first(m, "EntityTypeName", "entityTypeName").String(),
			first(m, "TempValue", "tempValue").Raw,
			first(m, "RealValue", "realValue").Raw)
	}

	return nil
}

func first(r gjson.Result, names ...string) gjson.Result {
	for _, name := range names {
		if v := r.Get(name); v.Exists() {
			return v
		}
	}

	return gjson.Result{}
}
