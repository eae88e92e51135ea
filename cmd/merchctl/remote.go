package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"storefront-merchandising-service/internal/api"
)

func dialService(addr string) (*grpc.ClientConn, *api.MerchandisingClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, api.NewMerchandisingClient(conn), nil
}

func newWatchCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the active campaign countdown from a running service",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := dialService(addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamCountdown(ctx, client, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC address of the merchandising service")
	return cmd
}

func streamCountdown(ctx context.Context, client *api.MerchandisingClient, out io.Writer) error {
	stream, err := client.WatchCountdown(ctx)
	if err != nil {
		return err
	}
	for {
		snap, err := stream.RecvSnapshot()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatSnapshot(snap))
	}
}

func newHomepageCmd() *cobra.Command {
	var addr, viewerID string
	cmd := &cobra.Command{
		Use:   "homepage",
		Short: "Fetch the curated homepage from a running service",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := dialService(addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			page, err := client.GetHomepage(ctx, viewerID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page.AsMap())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC address of the merchandising service")
	cmd.Flags().StringVar(&viewerID, "viewer", "", "Viewer id (UUID) for the recently viewed section")
	return cmd
}
