package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyring/cmd/app/commands"
	"github.com/allisson/keyring/internal/app"
	"github.com/allisson/keyring/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Provision a new key for a user",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunGenerateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Rotate a user's key and record the rotation in the audit trail",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier",
				},
				&cli.StringFlag{
					Name:     "reason",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Rotation reason recorded in the audit trail",
				},
				&cli.StringFlag{
					Name:    "initiated-by",
					Aliases: []string{"i"},
					Value:   "operator",
					Usage:   "Identity recorded as the rotation initiator",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rotationUseCase, err := container.RotationUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					rotationUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
					cmd.String("reason"),
					cmd.String("initiated-by"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "emergency-rotate-key",
			Usage: "Rotate a user's key immediately, bypassing the rotation throttle",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier",
				},
				&cli.StringFlag{
					Name:     "reason",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Rotation reason recorded in the audit trail",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rotationUseCase, err := container.RotationUseCase()
				if err != nil {
					return err
				}

				return commands.RunEmergencyRotateKey(
					ctx,
					rotationUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
					cmd.String("reason"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "deactivate-key",
			Usage: "Deactivate a user's key",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunDeactivateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
				)
			},
		},
		{
			Name:  "key-history",
			Usage: "List a user's key rotation audit records",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of records to return",
				},
				&cli.IntFlag{
					Name:    "offset",
					Aliases: []string{"o"},
					Value:   0,
					Usage:   "Number of records to skip",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunKeyHistory(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
					uint(cmd.Int("limit")),
					uint(cmd.Int("offset")),
					cmd.String("format"),
				)
			},
		},
	}
}
